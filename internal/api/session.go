package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/investpal/investpal/internal/store"
)

// SessionStore is the slice of the store the session handlers need.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID, userID string) (*store.Session, error)
	Session(ctx context.Context, sessionID string) (*store.Session, error)
}

// sessionHandler serves the /api/v1/sessions routes.
type sessionHandler struct {
	sessions SessionStore
	logger   *slog.Logger
}

// createSessionRequest is the body for session creation. SessionID is
// optional; an empty one gets a generated UUID.
type createSessionRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required", h.logger)
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		// A missing user context on create is a referential problem with
		// the request, not a lookup miss.
		if errors.Is(err, store.ErrUserContextNotFound) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
			return
		}
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, sess, h.logger)
}

func (h *sessionHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, sess, h.logger)
}
