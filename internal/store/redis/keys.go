package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark record keys
	KeyPrefixBookmark = "shelf:bookmark:"
	// KeyPrefixUser is the prefix for per-user index keys
	KeyPrefixUser = "shelf:user:"
)

// BookmarkKey returns the Redis key holding the JSON record for id
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// UserBookmarksKey returns the sorted set of bookmark IDs owned by userID,
// scored by creation time
func UserBookmarksKey(userID string) string {
	return KeyPrefixUser + userID + ":bookmarks"
}

