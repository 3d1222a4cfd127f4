package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/dto"
)

// MaxBodyBytes caps bookmark request bodies.
const MaxBodyBytes = 1 << 20

// BookmarkTest runs the storage self-test and returns its diagnostic string.
func BookmarkTest(d deps.Deps) http.HandlerFunc {
	return envelope(d, "test", func(r *http.Request) ([]string, error) {
		title, err := d.Bookmarks.Test(r.Context())
		if err != nil {
			return nil, err
		}
		return []string{title}, nil
	})
}

// CreateBookmark stores the body as a new bookmark of the caller. Any id or
// owner in the body is discarded.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return envelope(d, "create", func(r *http.Request) ([]dto.Bookmark, error) {
		rec, err := decodeRecord(r, "url")
		if err != nil {
			return nil, err
		}
		rec.ID = ""

		records, err := d.Bookmarks.Create(r.Context(), rec)
		if err != nil {
			return nil, err
		}
		return dto.FromRecords(records), nil
	})
}

// ListBookmarks returns the caller's bookmarks.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return envelope(d, "retrieve", func(r *http.Request) ([]dto.Bookmark, error) {
		userID, err := principal(r)
		if err != nil {
			return nil, err
		}

		records, err := d.Bookmarks.Retrieve(r.Context(), userID)
		if err != nil {
			return nil, err
		}
		return dto.FromRecords(records), nil
	})
}

// UpdateBookmark overwrites the title and url of the caller's bookmark named
// by the body id.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return envelope(d, "update", func(r *http.Request) ([]dto.Bookmark, error) {
		rec, err := decodeRecord(r, "id", "url")
		if err != nil {
			return nil, err
		}

		records, err := d.Bookmarks.Update(r.Context(), rec)
		if err != nil {
			return nil, err
		}
		return dto.FromRecords(records), nil
	})
}

// DeleteBookmark removes the caller's bookmark named by the body id.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return envelope(d, "delete", func(r *http.Request) ([]dto.Bookmark, error) {
		rec, err := decodeRecord(r, "id")
		if err != nil {
			return nil, err
		}

		records, err := d.Bookmarks.Delete(r.Context(), rec)
		if err != nil {
			return nil, err
		}
		return dto.FromRecords(records), nil
	})
}

// decodeRecord reads and validates the request body and stamps the
// authenticated caller as owner.
func decodeRecord(r *http.Request, required ...string) (*domain.Bookmark, error) {
	userID, err := principal(r)
	if err != nil {
		return nil, err
	}

	var body dto.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrNilRecord
		}
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := body.Validate(required...); err != nil {
		return nil, err
	}

	rec := body.ToRecord()
	rec.UserID = userID
	return rec, nil
}

func principal(r *http.Request) (string, error) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return "", domain.ErrUnknownUser
	}
	return userID, nil
}
