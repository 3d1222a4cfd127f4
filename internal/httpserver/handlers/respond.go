package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/dto"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// envelope is the one error boundary of the bookmark API. Whatever fn
// returns is wrapped in a dto.Response: results with 200, any error as its
// message with 400.
func envelope[T any](d deps.Deps, op string, fn func(r *http.Request) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fn(r)
		if err != nil {
			d.Logger.Warn("bookmark request failed",
				logger.String("op", op),
				logger.String("request_id", middleware.GetReqID(r.Context())),
				logger.Error(err))
			writeJSON(w, d.Logger, http.StatusBadRequest, dto.Fail[T](err.Error()))
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, dto.OK(data))
	}
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}
