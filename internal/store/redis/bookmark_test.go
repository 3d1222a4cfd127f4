package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}
	})
	return NewStore(client), mr
}

func TestRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) service.Repository {
		store, _ := newTestStore(t)
		return store
	})
}

func TestInsertLayout(t *testing.T) {
	store, mr := newTestStore(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := store.Insert(context.Background(), &domain.Bookmark{
		ID:        "b1",
		UserID:    "u1",
		Title:     "Go",
		URL:       "https://go.dev",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if !mr.Exists(BookmarkKey("b1")) {
		t.Errorf("expected record key %s", BookmarkKey("b1"))
	}
	members, err := mr.ZMembers(UserBookmarksKey("u1"))
	if err != nil {
		t.Fatalf("ZMembers() error = %v", err)
	}
	if len(members) != 1 || members[0] != "b1" {
		t.Errorf("user index = %v, want [b1]", members)
	}
	score, err := mr.ZScore(UserBookmarksKey("u1"), "b1")
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	if int64(score) != created.UnixMilli() {
		t.Errorf("score = %v, want %v", int64(score), created.UnixMilli())
	}
}

func TestFindByUserSkipsDanglingIndexEntries(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Bookmark{ID: "b1", UserID: "u1", Title: "kept"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := mr.ZAdd(UserBookmarksKey("u1"), 1, "ghost"); err != nil {
		t.Fatalf("ZAdd() error = %v", err)
	}

	bookmarks, err := store.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUser() error = %v", err)
	}
	if len(bookmarks) != 1 || bookmarks[0].ID != "b1" {
		t.Errorf("FindByUser() = %v, want only b1", bookmarks)
	}
}

func TestSaveMissingBookmark(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Save(context.Background(), &domain.Bookmark{ID: "ghost", UserID: "u1"})
	if err == nil {
		t.Fatal("Save() of missing bookmark should fail")
	}
}

func TestPingFailsWhenServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail once the server is gone")
	}
}

// rewriteAfterGet rewrites key from a second client right after the watched
// GET inside a transaction, so EXEC sees a modified key. It does so at most
// limit times.
type rewriteAfterGet struct {
	other *redis.Client
	key   string
	limit int32
	count atomic.Int32
}

func (h *rewriteAfterGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *rewriteAfterGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *rewriteAfterGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		args := cmd.Args()
		if cmd.Name() != "get" || len(args) != 2 || args[1] != h.key {
			return err
		}
		if h.count.Add(1) > h.limit {
			return err
		}
		val, getErr := h.other.Get(ctx, h.key).Result()
		if getErr == nil {
			h.other.Set(ctx, h.key, val, 0)
		}
		return err
	}
}

func withConflicts(t *testing.T, store *Store, mr *miniredis.Miniredis, id string, limit int32) *rewriteAfterGet {
	t.Helper()

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })

	h := &rewriteAfterGet{other: other, key: BookmarkKey(id), limit: limit}
	store.client.AddHook(h)
	return h
}

func TestDeleteRetriesAfterConcurrentWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Bookmark{ID: "b1", UserID: "u1", Title: "Go"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	h := withConflicts(t, store, mr, "b1", 1)

	if err := store.Delete(ctx, "b1", "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if h.count.Load() < 2 {
		t.Errorf("transaction ran %d times, want a retry", h.count.Load())
	}

	remaining, err := store.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUser() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining = %v, want none", remaining)
	}
}

func TestSaveRetriesAfterConcurrentWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Bookmark{ID: "b1", UserID: "u1", Title: "old"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	withConflicts(t, store, mr, "b1", 1)

	if err := store.Save(ctx, &domain.Bookmark{ID: "b1", UserID: "u1", Title: "new"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.FindByID(ctx, "b1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Title != "new" {
		t.Errorf("Title = %q, want new", got.Title)
	}
}

func TestDeleteGivesUpAfterRepeatedConflicts(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Bookmark{ID: "b1", UserID: "u1", Title: "Go"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	h := withConflicts(t, store, mr, "b1", maxTxAttempts)

	err := store.Delete(ctx, "b1", "u1")
	if !errors.Is(err, redis.TxFailedErr) {
		t.Fatalf("Delete() error = %v, want %v", err, redis.TxFailedErr)
	}
	if got := h.count.Load(); got != maxTxAttempts {
		t.Errorf("transaction ran %d times, want %d", got, maxTxAttempts)
	}
}
