package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// accessEntry carries values discovered by inner middlewares back to Log.
type accessEntry struct {
	userID string
}

type accessEntryKey struct{}

// noteUser records the authenticated caller for the access log line.
func noteUser(ctx context.Context, userID string) {
	if e, ok := ctx.Value(accessEntryKey{}).(*accessEntry); ok {
		e.userID = userID
	}
}

// Log writes one "http_request" line per request, after the response is
// sent. user_id is present only when Authenticate accepted the caller.
func Log(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			entry := &accessEntry{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), accessEntryKey{}, entry)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("remote_ip", r.RemoteAddr),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if entry.userID != "" {
				fields = append(fields, logger.String("user_id", entry.userID))
			}
			if ua := r.UserAgent(); ua != "" {
				fields = append(fields, logger.String("user_agent", ua))
			}
			log.Info("http_request", fields...)
		})
	}
}
