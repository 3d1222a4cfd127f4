package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/dto"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// reject ends the request with an error envelope, the same shape the
// bookmark handlers use.
func reject(w http.ResponseWriter, log logger.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto.Fail[dto.Bookmark](msg)); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}
