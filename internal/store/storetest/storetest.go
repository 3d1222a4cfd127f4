// Package storetest holds the behavior every bookmark repository must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/service"
)

// Factory returns a fresh, empty repository.
type Factory func(t *testing.T) service.Repository

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id, userID, title string, offset time.Duration) *domain.Bookmark {
	created := base.Add(offset)
	return &domain.Bookmark{
		ID:        id,
		UserID:    userID,
		Title:     title,
		URL:       "https://example.com/" + id,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Run exercises newRepo against the repository contract.
func Run(t *testing.T, newRepo Factory) {
	t.Run("insert then find by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		want := record("b1", "u1", "Go", 0)
		require.NoError(t, repo.Insert(ctx, want))

		got, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.UserID, got.UserID)
		assert.Equal(t, want.Title, got.Title)
		assert.Equal(t, want.URL, got.URL)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, want.CreatedAt)
	})

	t.Run("find by id missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find by user is scoped and ordered", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, record("b2", "u1", "second", time.Minute)))
		require.NoError(t, repo.Insert(ctx, record("b1", "u1", "first", 0)))
		require.NoError(t, repo.Insert(ctx, record("x1", "u2", "other user", 0)))

		got, err := repo.FindByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b1", got[0].ID)
		assert.Equal(t, "b2", got[1].ID)
		for _, b := range got {
			assert.Equal(t, "u1", b.UserID)
		}

		empty, err := repo.FindByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("save overwrites fields but not owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, record("b1", "u1", "old", 0)))

		changed := record("b1", "u1", "new", 0)
		changed.URL = "https://example.com/changed"
		changed.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, repo.Save(ctx, changed))

		got, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Title)
		assert.Equal(t, "https://example.com/changed", got.URL)
		assert.Equal(t, "u1", got.UserID)
		assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("delete is owner scoped and idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, record("b1", "u1", "mine", 0)))

		require.NoError(t, repo.Delete(ctx, "b1", "u2"))
		_, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err, "foreign delete must not remove the record")

		require.NoError(t, repo.Delete(ctx, "b1", "u1"))
		_, err = repo.FindByID(ctx, "b1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, "b1", "u1"), "second delete must be a no-op")
		got, err := repo.FindByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := record("b1", "u1", "title", 0)
		require.NoError(t, repo.Insert(ctx, in))
		in.Title = "mutated after insert"

		got, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		got.Title = "mutated after read"

		again, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "title", again.Title)
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})

	t.Run("concurrent inserts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("b%02d", i)
				assert.NoError(t, repo.Insert(ctx, record(id, "u1", id, time.Duration(i)*time.Second)))
			}(i)
		}
		wg.Wait()

		got, err := repo.FindByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, got, 20)
	})
}
