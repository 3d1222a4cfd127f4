// Package memory is a process-local bookmark repository. Data does not survive
// a restart; use it for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Store keeps bookmarks in maps guarded by a RWMutex.
// Records are copied on the way in and out so callers never share memory
// with the store.
type Store struct {
	mu        sync.RWMutex
	bookmarks map[string]*domain.Bookmark    // ID -> Bookmark
	byUser    map[string]map[string]struct{} // UserID -> set of IDs
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bookmarks: make(map[string]*domain.Bookmark),
		byUser:    make(map[string]map[string]struct{}),
	}
}

// Insert adds a new bookmark
func (s *Store) Insert(_ context.Context, b *domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[b.ID] = b.Clone()
	ids, ok := s.byUser[b.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[b.UserID] = ids
	}
	ids[b.ID] = struct{}{}
	return nil
}

// FindByUser returns a sorted snapshot of the user's bookmarks
func (s *Store) FindByUser(_ context.Context, userID string) ([]*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for id := range ids {
		bookmarks = append(bookmarks, s.bookmarks[id].Clone())
	}
	domain.SortBookmarks(bookmarks)
	return bookmarks, nil
}

// FindByID retrieves a bookmark by ID
func (s *Store) FindByID(_ context.Context, id string) (*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

// Save overwrites an existing bookmark. Ownership never changes.
func (s *Store) Save(_ context.Context, b *domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.bookmarks[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := b.Clone()
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	s.bookmarks[b.ID] = updated
	return nil
}

// Delete removes a bookmark owned by userID
func (s *Store) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok || !b.OwnedBy(userID) {
		return nil
	}
	delete(s.bookmarks, id)
	if ids := s.byUser[userID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byUser, userID)
		}
	}
	return nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// Count returns the number of bookmarks across all users
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bookmarks)
}
