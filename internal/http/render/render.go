// Package render writes JSON responses.
package render

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, log *zap.Logger, status int, msg string) {
	JSON(w, log, status, errorResponse{Error: msg})
}

// Internal logs err and answers with a generic 500.
func Internal(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	Error(w, log, http.StatusInternalServerError, "internal error")
}
