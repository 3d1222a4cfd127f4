// Package dto holds the JSON shapes the bookmark API reads and writes.
package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bookmark is the caller-visible form of a bookmark. The owner is never part
// of it: a "userId" key in a request body is ignored and never emitted.
type Bookmark struct {
	ID        string     `json:"id,omitempty" validate:"omitempty,max=128"`
	Title     string     `json:"title" validate:"max=512"`
	URL       string     `json:"url" validate:"omitempty,http_url,max=2048"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks field formats, then that every field named in required
// (by JSON name) is non-empty. The first failure is returned as a
// *domain.ValidationError.
func (b Bookmark) Validate(required ...string) error {
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return toValidationError(verrs[0])
		}
		return err
	}

	for _, field := range required {
		var value string
		switch field {
		case "id":
			value = b.ID
		case "title":
			value = b.Title
		case "url":
			value = b.URL
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		if strings.TrimSpace(value) == "" {
			return domain.NewValidationError(field, "is required")
		}
	}
	return nil
}

// ToRecord converts the shape into a record. The owner and timestamps are
// left for the caller and the service to set.
func (b Bookmark) ToRecord() *domain.Bookmark {
	return &domain.Bookmark{
		ID:    b.ID,
		Title: b.Title,
		URL:   b.URL,
	}
}

// FromRecord converts a record into its caller-visible form.
func FromRecord(r *domain.Bookmark) Bookmark {
	out := Bookmark{
		ID:    r.ID,
		Title: r.Title,
		URL:   r.URL,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt.UTC()
		out.CreatedAt = &created
	}
	if !r.UpdatedAt.IsZero() {
		updated := r.UpdatedAt.UTC()
		out.UpdatedAt = &updated
	}
	return out
}

// FromRecords converts records in order. Nil entries are skipped and the
// result is never nil.
func FromRecords(records []*domain.Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, FromRecord(r))
	}
	return out
}

func toValidationError(fe validator.FieldError) error {
	var msg string
	switch fe.Tag() {
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	case "http_url":
		msg = "must be an http(s) URL"
	case "required":
		msg = "is required"
	default:
		msg = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return domain.NewValidationError(fe.Field(), msg)
}
