package memory

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/storetest"
)

func TestRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) service.Repository {
		return NewStore()
	})
}

func TestNewStoreIsEmpty(t *testing.T) {
	store := NewStore()
	if store.Count() != 0 {
		t.Errorf("NewStore() should start empty, got %v bookmarks", store.Count())
	}
}

func TestSaveMissingBookmark(t *testing.T) {
	store := NewStore()
	err := store.Save(context.Background(), &domain.Bookmark{ID: "ghost", UserID: "u1"})
	if err != domain.ErrNotFound {
		t.Errorf("Save() of missing bookmark = %v, want ErrNotFound", err)
	}
}

func TestDeleteDropsEmptyUserSet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Bookmark{ID: "b1", UserID: "u1"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Delete(ctx, "b1", "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, ok := store.byUser["u1"]; ok {
		t.Error("Delete() should drop the user's empty id set")
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %v, want 0", store.Count())
	}
}
