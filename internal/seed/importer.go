// Package seed imports a Homepage-style bookmarks.yaml into one user's
// collection, once at startup and optionally on a schedule.
package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// BookmarkService is the subset of the bookmark service the importer needs.
type BookmarkService interface {
	Retrieve(ctx context.Context, userID string) ([]*domain.Bookmark, error)
	Create(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error)
}

// Importer adds the file's bookmarks the user does not have yet. Existing
// bookmarks are matched by URL and never modified or removed.
type Importer struct {
	loader *Loader
	svc    BookmarkService
	userID string
	logger logger.Logger
}

// NewImporter creates an importer for filePath owned by userID.
func NewImporter(filePath, userID string, svc BookmarkService, log logger.Logger) *Importer {
	return &Importer{
		loader: NewLoader(filePath),
		svc:    svc,
		userID: userID,
		logger: log,
	}
}

// Import loads the file and creates the missing bookmarks. It returns how
// many were created.
func (im *Importer) Import(ctx context.Context) (int, error) {
	file, err := im.loader.Load()
	if err != nil {
		return 0, err
	}

	candidates := Map(file, im.userID)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no valid bookmarks found in %s", im.loader.Path())
	}

	existing, err := im.svc.Retrieve(ctx, im.userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing bookmarks: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		known[b.URL] = struct{}{}
	}

	created := 0
	for _, b := range candidates {
		if _, ok := known[b.URL]; ok {
			continue
		}
		if _, err := im.svc.Create(ctx, b); err != nil {
			return created, fmt.Errorf("failed to import %s: %w", b.URL, err)
		}
		known[b.URL] = struct{}{}
		created++
	}

	im.logger.Info("bookmarks imported",
		logger.String("file", im.loader.Path()),
		logger.String("user_id", im.userID),
		logger.Int("candidates", len(candidates)),
		logger.Int("created", created))

	return created, nil
}
