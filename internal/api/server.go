package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger   *slog.Logger
	Chat     ChatService      // Required
	Contexts UserContextStore // Required
	Sessions SessionStore     // Required
	Pool     *pgxpool.Pool    // Optional: nil disables the database check in /readyz
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Chat == nil {
		return nil, errors.New("chat service is required")
	}
	if cfg.Contexts == nil {
		return nil, errors.New("user context store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	uh := &userContextHandler{contexts: cfg.Contexts, logger: logger}
	sh := &sessionHandler{sessions: cfg.Sessions, logger: logger}
	ch := &chatHandler{chat: cfg.Chat, logger: logger}

	mux := http.NewServeMux()

	// User contexts
	mux.HandleFunc("POST /api/v1/users/{id}/context", uh.create)
	mux.HandleFunc("GET /api/v1/users/{id}/context", uh.get)
	mux.HandleFunc("PUT /api/v1/users/{id}/context", uh.update)

	// Sessions
	mux.HandleFunc("POST /api/v1/sessions", sh.create)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sh.get)

	// Chat
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("POST /api/v1/chat/ui", ch.sendUI)

	// Middleware stack (outermost first): Recovery → Logging → Routes
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps health probes out of the middleware stack so
	// probe traffic never shows up in the request log.
	topMux := http.NewServeMux()
	topMux.Handle("GET /healthz", health(logger))
	topMux.Handle("GET /readyz", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
