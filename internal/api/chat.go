package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/investpal/investpal/internal/genui"
)

// ChatService runs conversation turns. Implemented by chat.Service.
type ChatService interface {
	GenerateTextResponse(ctx context.Context, sessionID, message string) (string, error)
	GenerateUIResponse(ctx context.Context, sessionID, message string) (*genui.Response, error)
}

// chatHandler serves the /api/v1/chat routes.
type chatHandler struct {
	chat   ChatService
	logger *slog.Logger
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// decodeChatRequest reads and validates a chat request body.
func decodeChatRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", logger)
		return req, false
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required", logger)
		return req, false
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required", logger)
		return req, false
	}
	return req, true
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r, h.logger)
	if !ok {
		return
	}

	text, err := h.chat.GenerateTextResponse(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, genui.TextResponse{Response: text}, h.logger)
}

func (h *chatHandler) sendUI(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r, h.logger)
	if !ok {
		return
	}

	ui, err := h.chat.GenerateUIResponse(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeStoreError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, ui, h.logger)
}
