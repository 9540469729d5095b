// Package chat orchestrates conversation turns: it loads the session,
// invokes the gateway, and persists the exchange.
//
// Persistence is all-or-nothing against generation: nothing is written to
// the session log unless the gateway produced a response, so a failed turn
// leaves the log exactly as it was. Concurrent turns on the same session are
// not serialized; both will persist, and their interleaving in the log
// follows append order.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/investpal/investpal/internal/genui"
	"github.com/investpal/investpal/internal/store"
)

// SessionStore is the slice of the store the orchestrator needs.
type SessionStore interface {
	Session(ctx context.Context, sessionID string) (*store.Session, error)
	AppendMessages(ctx context.Context, sessionID string, messages ...store.Message) error
}

// Responder produces advisor responses for a conversation. Implemented by
// the gateway.
type Responder interface {
	RespondText(ctx context.Context, userID string, conversation []store.Message) (string, error)
	RespondUI(ctx context.Context, userID string, conversation []store.Message) (*genui.Response, error)
}

// Config contains all required parameters for the chat Service.
type Config struct {
	Sessions  SessionStore
	Responder Responder
	Logger    *slog.Logger
}

func (cfg Config) validate() error {
	if cfg.Sessions == nil {
		return errors.New("session store is required")
	}
	if cfg.Responder == nil {
		return errors.New("responder is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Service runs conversation turns. It is stateless and safe for concurrent
// use.
type Service struct {
	sessions  SessionStore
	responder Responder
	logger    *slog.Logger
}

// New creates a chat Service.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Service{
		sessions:  cfg.Sessions,
		responder: cfg.Responder,
		logger:    cfg.Logger,
	}, nil
}

// GenerateTextResponse runs a plain-text turn for the session. The user
// message and the advisor's reply are appended to the session log only
// after generation succeeds.
func (s *Service) GenerateTextResponse(ctx context.Context, sessionID, message string) (string, error) {
	sess, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}

	userMsg := store.Message{
		Role:      store.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}
	conversation := append(sess.Messages, userMsg)

	text, err := s.responder.RespondText(ctx, sess.UserID, conversation)
	if err != nil {
		return "", err
	}

	agentMsg := store.Message{
		Role:      store.RoleAgent,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.AppendMessages(ctx, sessionID, userMsg, agentMsg); err != nil {
		return "", fmt.Errorf("persisting turn for session %s: %w", sessionID, err)
	}

	s.logger.Debug("completed text turn",
		"session_id", sessionID,
		"user_id", sess.UserID,
		"history_len", len(sess.Messages)+2,
	)
	return text, nil
}

// GenerateUIResponse runs a structured UI turn for the session. The
// component list is flattened to JSON for the durable log, and that JSON
// string is what re-enters the conversation window on later turns.
func (s *Service) GenerateUIResponse(ctx context.Context, sessionID, message string) (*genui.Response, error) {
	sess, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := store.Message{
		Role:      store.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}
	conversation := append(sess.Messages, userMsg)

	ui, err := s.responder.RespondUI(ctx, sess.UserID, conversation)
	if err != nil {
		return nil, err
	}

	flattened, err := json.Marshal(ui)
	if err != nil {
		return nil, fmt.Errorf("flattening UI response for session %s: %w", sessionID, err)
	}

	agentMsg := store.Message{
		Role:      store.RoleAgent,
		Content:   string(flattened),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.AppendMessages(ctx, sessionID, userMsg, agentMsg); err != nil {
		return nil, fmt.Errorf("persisting turn for session %s: %w", sessionID, err)
	}

	s.logger.Debug("completed UI turn",
		"session_id", sessionID,
		"user_id", sess.UserID,
		"components", len(ui.Components),
	)
	return ui, nil
}
