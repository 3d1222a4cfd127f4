package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds how often an optimistic transaction is retried after
// another client modified a watched key.
const maxTxAttempts = 5

// Store handles Redis operations for bookmark records.
//
// Layout:
//
//	shelf:bookmark:<id>          JSON record
//	shelf:user:<uid>:bookmarks   ZSET of ids scored by created_at (ms)
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Insert stores a new bookmark and indexes it under its owner
func (s *Store) Insert(ctx context.Context, bookmark *domain.Bookmark) error {
	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
		pipe.ZAdd(ctx, UserBookmarksKey(bookmark.UserID), redis.Z{
			Score:  float64(bookmark.CreatedAt.UnixMilli()),
			Member: bookmark.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// FindByID retrieves a bookmark from Redis by ID
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	return decode(data)
}

// FindByUser retrieves every bookmark indexed under userID
func (s *Store) FindByUser(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.ZRange(ctx, UserBookmarksKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip it
			continue
		}
		bookmark, err := decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("bookmark %s: %w", ids[i], err)
		}
		bookmarks = append(bookmarks, bookmark)
	}

	domain.SortBookmarks(bookmarks)
	return bookmarks, nil
}

// Save overwrites an existing bookmark. The owner and creation time of the
// stored record are kept.
func (s *Store) Save(ctx context.Context, bookmark *domain.Bookmark) error {
	key := BookmarkKey(bookmark.ID)

	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, bookmark.ID)
		}
		if err != nil {
			return err
		}
		existing, err := decode(data)
		if err != nil {
			return err
		}

		updated := bookmark.Clone()
		updated.UserID = existing.UserID
		updated.CreatedAt = existing.CreatedAt
		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	return nil
}

// Delete removes a bookmark owned by userID from Redis
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	key := BookmarkKey(id)

	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		existing, err := decode(data)
		if err != nil {
			return err
		}
		if !existing.OwnedBy(userID) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, UserBookmarksKey(userID), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

// watch runs fn as a WATCH/MULTI/EXEC transaction on key and starts over
// when EXEC is aborted by a concurrent write.
func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, key string) error {
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = s.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decode(data []byte) (*domain.Bookmark, error) {
	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &bookmark, nil
}
