package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/investpal/investpal/internal/gateway"
	"github.com/investpal/investpal/internal/store"
)

// errorResponse is the JSON body for every error status.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code. Buffer-first:
// headers are only sent after successful encoding, so an encoding failure
// can still produce a proper 500.
func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		logger.Error("encoding JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Debug("writing response body", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	writeJSON(w, status, errorResponse{Error: code, Message: message}, logger)
}

// writeStoreError maps a storage or generation error to its HTTP status.
// Uncategorized errors are logged and answered with a generic 500 so
// internal detail never leaks to clients.
func writeStoreError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, store.ErrUserContextNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), logger)
	case errors.Is(err, store.ErrUserContextExists),
		errors.Is(err, store.ErrSessionExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error(), logger)
	case errors.Is(err, gateway.ErrGeneration):
		logger.Error("generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "generation_failed",
			"the advisor could not generate a response", logger)
	default:
		logger.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"internal server error", logger)
	}
}
