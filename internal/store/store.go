// Package store persists user contexts and conversation sessions in
// PostgreSQL. Both are stored as JSONB documents: a user context is one row
// in user_contexts, a session is one row in sessions with its message log
// embedded as an ordered JSONB array.
//
// Uniqueness is decided by the database, not by a prior read: creates use
// INSERT ... ON CONFLICT DO NOTHING and report a duplicate when no row was
// inserted. Two concurrent creates for the same key therefore resolve to
// exactly one winner.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the store needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides user context and session persistence.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DBTX
	logger *slog.Logger
}

// New creates a Store backed by db. A nil logger falls back to slog.Default.
func New(db DBTX, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// CreateUserContext creates a user context document. Nil profile and
// portfolio are stored as empty values so reads never return nil maps or
// slices for an existing user.
//
// Returns ErrUserContextExists if the user already has a context.
func (s *Store) CreateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []PortfolioHolding) (*UserContext, error) {
	if profile == nil {
		profile = map[string]any{}
	}
	if portfolio == nil {
		portfolio = []PortfolioHolding{}
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshaling profile: %w", err)
	}
	portfolioJSON, err := json.Marshal(portfolio)
	if err != nil {
		return nil, fmt.Errorf("marshaling portfolio: %w", err)
	}

	var createdAt, updatedAt time.Time
	err = s.db.QueryRow(ctx, `
		INSERT INTO user_contexts (user_id, profile, portfolio)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at`,
		userID, profileJSON, portfolioJSON,
	).Scan(&createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserContextExists)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user context for %s: %w", userID, err)
	}

	s.logger.Debug("created user context", "user_id", userID, "holdings", len(portfolio))
	return &UserContext{
		UserID:    userID,
		Profile:   profile,
		Portfolio: portfolio,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// UserContext retrieves the user context for userID.
//
// Returns ErrUserContextNotFound if the user has no context.
func (s *Store) UserContext(ctx context.Context, userID string) (*UserContext, error) {
	var (
		profileJSON   []byte
		portfolioJSON []byte
		uc            = UserContext{UserID: userID}
	)
	err := s.db.QueryRow(ctx, `
		SELECT profile, portfolio, created_at, updated_at
		FROM user_contexts
		WHERE user_id = $1`,
		userID,
	).Scan(&profileJSON, &portfolioJSON, &uc.CreatedAt, &uc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserContextNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user context for %s: %w", userID, err)
	}

	if err := json.Unmarshal(profileJSON, &uc.Profile); err != nil {
		return nil, fmt.Errorf("unmarshaling profile for %s: %w", userID, err)
	}
	if err := json.Unmarshal(portfolioJSON, &uc.Portfolio); err != nil {
		return nil, fmt.Errorf("unmarshaling portfolio for %s: %w", userID, err)
	}
	return &uc, nil
}

// UpdateUserContext replaces the user's profile and portfolio wholesale.
// There is no partial merge: the stored document becomes exactly what was
// passed in.
//
// Returns ErrUserContextNotFound if the user has no context to update.
func (s *Store) UpdateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []PortfolioHolding) (*UserContext, error) {
	if profile == nil {
		profile = map[string]any{}
	}
	if portfolio == nil {
		portfolio = []PortfolioHolding{}
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshaling profile: %w", err)
	}
	portfolioJSON, err := json.Marshal(portfolio)
	if err != nil {
		return nil, fmt.Errorf("marshaling portfolio: %w", err)
	}

	var createdAt, updatedAt time.Time
	err = s.db.QueryRow(ctx, `
		UPDATE user_contexts
		SET profile = $2, portfolio = $3, updated_at = now()
		WHERE user_id = $1
		RETURNING created_at, updated_at`,
		userID, profileJSON, portfolioJSON,
	).Scan(&createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserContextNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("updating user context for %s: %w", userID, err)
	}

	s.logger.Debug("updated user context", "user_id", userID, "holdings", len(portfolio))
	return &UserContext{
		UserID:    userID,
		Profile:   profile,
		Portfolio: portfolio,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// CreateSession creates an empty session owned by userID. An empty
// sessionID gets a generated UUID.
//
// The owning user must already have a context; creating a session for an
// unknown user returns ErrUserContextNotFound. Returns ErrSessionExists if
// the session ID is taken.
func (s *Store) CreateSession(ctx context.Context, sessionID, userID string) (*Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_contexts WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking user context for %s: %w", userID, err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserContextNotFound)
	}

	var createdAt, updatedAt time.Time
	err = s.db.QueryRow(ctx, `
		INSERT INTO sessions (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING created_at, updated_at`,
		sessionID, userID,
	).Scan(&createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionExists)
	}
	if err != nil {
		return nil, fmt.Errorf("creating session %s: %w", sessionID, err)
	}

	s.logger.Debug("created session", "session_id", sessionID, "user_id", userID)
	return &Session{
		SessionID: sessionID,
		UserID:    userID,
		Messages:  []Message{},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Session retrieves a session with its full message log in conversation
// order.
//
// Returns ErrSessionNotFound if no session has the given ID.
func (s *Store) Session(ctx context.Context, sessionID string) (*Session, error) {
	var (
		messagesJSON []byte
		sess         = Session{SessionID: sessionID}
	)
	err := s.db.QueryRow(ctx, `
		SELECT user_id, messages, created_at, updated_at
		FROM sessions
		WHERE session_id = $1`,
		sessionID,
	).Scan(&sess.UserID, &messagesJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", sessionID, err)
	}

	if err := json.Unmarshal(messagesJSON, &sess.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages for session %s: %w", sessionID, err)
	}
	if sess.Messages == nil {
		sess.Messages = []Message{}
	}
	return &sess, nil
}

// AppendMessages appends messages to a session's log in the given order.
// The append is a single JSONB concatenation, so either all messages land
// or none do. Messages without a timestamp are stamped with the current
// time.
//
// Returns ErrSessionNotFound if no session has the given ID.
func (s *Store) AppendMessages(ctx context.Context, sessionID string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range messages {
		if messages[i].CreatedAt.IsZero() {
			messages[i].CreatedAt = now
		}
	}

	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE sessions
		SET messages = messages || $2::jsonb, updated_at = now()
		WHERE session_id = $1`,
		sessionID, messagesJSON,
	)
	if err != nil {
		return fmt.Errorf("appending messages to session %s: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	s.logger.Debug("appended messages", "session_id", sessionID, "count", len(messages))
	return nil
}
