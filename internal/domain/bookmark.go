package domain

import (
	"sort"
	"time"
)

// Bookmark is the persisted bookmark record.
//
// A Bookmark always belongs to exactly one user. The owner is taken from the
// authenticated principal, never from caller input.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the service on first persist.
	// Empty means "not persisted yet".
	ID string `json:"id"`

	// UserID is the owning principal.
	UserID string `json:"user_id"`

	// ─────────────────────────────
	// Caller-supplied description
	// ─────────────────────────────

	// Title is the display name.
	// Example: "Go documentation"
	Title string `json:"title"`

	// URL is the bookmarked location.
	// Example: https://go.dev/doc/
	URL string `json:"url"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once, when the record is first persisted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every update.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that does not share memory with b.
func (b *Bookmark) Clone() *Bookmark {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// OwnedBy reports whether the record belongs to userID.
func (b *Bookmark) OwnedBy(userID string) bool {
	return b != nil && userID != "" && b.UserID == userID
}

// SortBookmarks orders a collection oldest first, ties broken by ID.
// Every store returns collections in this order.
func SortBookmarks(bookmarks []*Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := bookmarks[i], bookmarks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
