package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

// Healthz reports liveness and build info. It never touches the store, so a
// Redis outage does not get the process restarted; /readyz covers that.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	build := map[string]string{
		"version":    d.Version,
		"commit":     d.Commit,
		"build_date": d.BuildDate,
		"go_version": d.GoVersion,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status":         "ok",
			"store":          d.StoreBackend,
			"uptime_seconds": math.Round(now().Sub(d.StartTime).Seconds()*1000) / 1000,
		}
		for k, v := range build {
			if v != "" {
				body[k] = v
			}
		}
		writeJSON(w, d.Logger, http.StatusOK, body)
	}
}
