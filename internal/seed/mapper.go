package seed

import (
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Map converts a parsed bookmarks file into records owned by userID, in file
// order. Entries without a usable http(s) href are skipped and repeated URLs
// keep their first occurrence. IDs and timestamps are left for the service to
// assign.
func Map(file File, userID string) []*domain.Bookmark {
	bookmarks := make([]*domain.Bookmark, 0)
	seen := make(map[string]struct{})

	for _, category := range file {
		for _, group := range sortedKeys(category) {
			for _, item := range category[group] {
				for _, name := range sortedKeys(item) {
					entries := item[name]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					href := strings.TrimSpace(entry.Href)
					if !isWebURL(href) {
						continue
					}
					if _, dup := seen[href]; dup {
						continue
					}
					seen[href] = struct{}{}

					title := strings.TrimSpace(name)
					if title == "" {
						title = entry.Abbr
					}

					bookmarks = append(bookmarks, &domain.Bookmark{
						UserID: userID,
						Title:  title,
						URL:    href,
					})
				}
			}
		}
	}

	return bookmarks
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
