// Package service implements the bookmark storage contract on top of a
// Repository: every operation is scoped to one user and every mutation
// returns that user's full collection after the change.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// DiagnosticTitle is the title written and read back by Test.
const DiagnosticTitle = "My first bookmark item"

// DiagnosticUser owns the transient record written by Test. It is reserved:
// no caller can act as this user, whatever its verifier accepts.
const DiagnosticUser = "shelf-diagnostic"

// Repository persists bookmark records. Implementations return collections
// sorted with domain.SortBookmarks.
type Repository interface {
	// Insert stores a new record. The ID is already assigned.
	Insert(ctx context.Context, b *domain.Bookmark) error
	// FindByUser returns every record owned by userID.
	FindByUser(ctx context.Context, userID string) ([]*domain.Bookmark, error)
	// FindByID returns domain.ErrNotFound when no record has id.
	FindByID(ctx context.Context, id string) (*domain.Bookmark, error)
	// Save overwrites an existing record.
	Save(ctx context.Context, b *domain.Bookmark) error
	// Delete removes the record only if userID owns it. Missing is not an error.
	Delete(ctx context.Context, id, userID string) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// BookmarkService is stateless apart from its repository; it is safe for
// concurrent use.
type BookmarkService struct {
	repo    Repository
	log     logger.Logger
	timeout time.Duration
	newID   func() string
	now     func() time.Time
}

// Option customizes a BookmarkService.
type Option func(*BookmarkService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *BookmarkService) { s.now = now }
}

// WithIDGenerator overrides uuid-based id assignment.
func WithIDGenerator(newID func() string) Option {
	return func(s *BookmarkService) { s.newID = newID }
}

// NewBookmarkService wraps repo. Each repository call gets its own deadline
// of timeout; zero disables it.
func NewBookmarkService(repo Repository, log logger.Logger, timeout time.Duration, opts ...Option) *BookmarkService {
	s := &BookmarkService{
		repo:    repo,
		log:     log,
		timeout: timeout,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Test writes a diagnostic record, reads it back, removes it and returns its
// title.
func (s *BookmarkService) Test(ctx context.Context) (string, error) {
	probe := &domain.Bookmark{
		UserID: DiagnosticUser,
		Title:  DiagnosticTitle,
		URL:    "https://example.com/",
	}
	s.stamp(probe)

	if err := s.call(ctx, func(ctx context.Context) error { return s.repo.Insert(ctx, probe) }); err != nil {
		return "", fmt.Errorf("diagnostic insert failed: %w", err)
	}
	defer func() {
		if err := s.call(context.WithoutCancel(ctx), func(ctx context.Context) error {
			return s.repo.Delete(ctx, probe.ID, DiagnosticUser)
		}); err != nil {
			s.log.Warn("failed to remove diagnostic bookmark",
				logger.String("id", probe.ID), logger.Error(err))
		}
	}()

	var found *domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.repo.FindByID(ctx, probe.ID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("diagnostic read failed: %w", err)
	}
	return found.Title, nil
}

// Create persists b under a freshly assigned ID and returns the owner's
// collection.
func (s *BookmarkService) Create(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error) {
	if err := validate(b); err != nil {
		return nil, err
	}

	record := b.Clone()
	s.stamp(record)

	if err := s.call(ctx, func(ctx context.Context) error { return s.repo.Insert(ctx, record) }); err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	s.log.Debug("bookmark created",
		logger.String("id", record.ID),
		logger.String("user_id", record.UserID))

	return s.Retrieve(ctx, record.UserID)
}

// Retrieve returns every record owned by userID.
func (s *BookmarkService) Retrieve(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}

	var bookmarks []*domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		bookmarks, err = s.repo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookmarks: %w", err)
	}
	if bookmarks == nil {
		bookmarks = []*domain.Bookmark{}
	}
	return bookmarks, nil
}

// Update overwrites the caller-supplied fields of the record matching both
// b.ID and b.UserID. A record that does not exist or belongs to someone else
// is left alone and the caller's unchanged collection is returned.
func (s *BookmarkService) Update(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, domain.ErrMissingID
	}

	existing, err := s.findOwned(ctx, b.ID, b.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}

	if existing == nil {
		s.log.Debug("update matched no bookmark",
			logger.String("id", b.ID),
			logger.String("user_id", b.UserID))
		return s.Retrieve(ctx, b.UserID)
	}

	existing.Title = b.Title
	existing.URL = b.URL
	existing.UpdatedAt = s.now().UTC()

	err = s.call(ctx, func(ctx context.Context) error { return s.repo.Save(ctx, existing) })
	if errors.Is(err, domain.ErrNotFound) {
		// Deleted since findOwned; same outcome as never having existed.
		s.log.Debug("bookmark vanished before update",
			logger.String("id", b.ID),
			logger.String("user_id", b.UserID))
		return s.Retrieve(ctx, b.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}

	return s.Retrieve(ctx, b.UserID)
}

// Delete removes the record matching b.ID owned by b.UserID and returns what
// remains. Deleting a missing or foreign record is a no-op.
func (s *BookmarkService) Delete(ctx context.Context, b *domain.Bookmark) ([]*domain.Bookmark, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, domain.ErrMissingID
	}

	err := s.call(ctx, func(ctx context.Context) error { return s.repo.Delete(ctx, b.ID, b.UserID) })
	if err != nil {
		return nil, fmt.Errorf("error deleting bookmark: %w", err)
	}

	return s.Retrieve(ctx, b.UserID)
}

// Ping reports whether the repository is reachable.
func (s *BookmarkService) Ping(ctx context.Context) error {
	return s.call(ctx, s.repo.Ping)
}

// findOwned returns nil, nil when id does not exist or is not owned by userID.
func (s *BookmarkService) findOwned(ctx context.Context, id, userID string) (*domain.Bookmark, error) {
	var found *domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.repo.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !found.OwnedBy(userID) {
		return nil, nil
	}
	return found, nil
}

// stamp assigns identity and creation metadata to a record about to be inserted.
func (s *BookmarkService) stamp(b *domain.Bookmark) {
	now := s.now().UTC()
	b.ID = s.newID()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// call runs fn under the per-call deadline.
func (s *BookmarkService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func validate(b *domain.Bookmark) error {
	if b == nil {
		return domain.ErrNilRecord
	}
	return checkUser(b.UserID)
}

func checkUser(userID string) error {
	if userID == "" || userID == DiagnosticUser {
		return domain.ErrUnknownUser
	}
	return nil
}
