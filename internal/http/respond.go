package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/period"
	"fintrack/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes: malformed input is
// 400, semantically invalid data is 422, missing rows are 404, and a broken
// store is 503. Anything unrecognized is a 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, period.ErrInvalidPeriodFormat),
		errors.Is(err, period.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, core.ErrEmptyOwner),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrNotesTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transaction not found"})

	case errors.Is(err, store.ErrStoreUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage temporarily unavailable"})

	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
