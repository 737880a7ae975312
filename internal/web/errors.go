package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tordrt/tablediff/internal/diff"
)

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error to an HTTP status and a stable code
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "upload_too_large"
	case errors.Is(err, diff.ErrKeyColumnNotShared):
		return http.StatusBadRequest, "invalid_key_column"
	case errors.Is(err, diff.ErrNegativeCap), errors.Is(err, diff.ErrUnknownDuplicatePolicy):
		return http.StatusBadRequest, "invalid_options"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

// respondError logs err with the request ID and writes a JSON error body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondJSON writes v as JSON with status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
