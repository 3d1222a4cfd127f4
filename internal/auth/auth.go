// Package auth supplies the authenticated principal for each request.
//
// The principal is an opaque, non-empty user identifier. Nothing downstream
// inspects its format; handlers only read it back from the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrMissingCredentials means the request carried no credentials at all.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials means credentials were present but rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrExpiredToken means the bearer token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Verifier resolves the principal of a request.
type Verifier interface {
	Verify(r *http.Request) (userID string, err error)
}

type contextKey struct{}

// WithUserID stores the principal in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the principal stored by WithUserID.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
