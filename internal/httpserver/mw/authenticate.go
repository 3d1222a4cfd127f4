package mw

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Authenticate resolves the caller with v and stores the user id in the
// request context. Requests without valid credentials get a 401 error
// envelope and never reach next.
func Authenticate(v auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := v.Verify(r)
			if err != nil {
				log.Debug("authentication failed",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				unauthorized(w, log, err)
				return
			}

			noteUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, log logger.Logger, err error) {
	msg := "invalid credentials"
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		msg = "missing credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		msg = "token expired"
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	reject(w, log, http.StatusUnauthorized, msg)
}
