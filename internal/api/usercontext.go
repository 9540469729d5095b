package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/investpal/investpal/internal/store"
)

// UserContextStore is the slice of the store the user-context handlers need.
type UserContextStore interface {
	CreateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []store.PortfolioHolding) (*store.UserContext, error)
	UserContext(ctx context.Context, userID string) (*store.UserContext, error)
	UpdateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []store.PortfolioHolding) (*store.UserContext, error)
}

// userContextHandler serves the /api/v1/users/{id}/context routes.
type userContextHandler struct {
	contexts UserContextStore
	logger   *slog.Logger
}

// userContextRequest is the body for create and update. Both fields are
// optional on create; update replaces the whole document with exactly what
// is sent.
type userContextRequest struct {
	UserProfile   map[string]any           `json:"user_profile"`
	UserPortfolio []store.PortfolioHolding `json:"user_portfolio"`
}

func (h *userContextHandler) create(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req userContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}

	uc, err := h.contexts.CreateUserContext(r.Context(), userID, req.UserProfile, req.UserPortfolio)
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, uc, h.logger)
}

func (h *userContextHandler) get(w http.ResponseWriter, r *http.Request) {
	uc, err := h.contexts.UserContext(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, uc, h.logger)
}

func (h *userContextHandler) update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req userContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", h.logger)
		return
	}

	uc, err := h.contexts.UpdateUserContext(r.Context(), userID, req.UserProfile, req.UserPortfolio)
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, uc, h.logger)
}
