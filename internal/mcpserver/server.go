// Package mcpserver exposes the user-context store as an MCP catalog: two
// tools (getUserContext, updateUserContext) plus the investment-advisor
// prompt. Any MCP-capable agent can consume it; the built-in gateway uses
// the same store directly and connects here only for remote catalogs.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/investpal/investpal/internal/gateway"
	"github.com/investpal/investpal/internal/store"
)

const (
	serverName    = "investpal-context"
	serverVersion = "1.0.0"
)

// UserContextStore is the slice of the store the catalog tools need.
type UserContextStore interface {
	UserContext(ctx context.Context, userID string) (*store.UserContext, error)
	UpdateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []store.PortfolioHolding) (*store.UserContext, error)
}

// Server wraps the MCP SDK server around the user-context store.
type Server struct {
	mcpServer *mcp.Server
	contexts  UserContextStore
	logger    *slog.Logger
}

// Config holds MCP catalog server configuration.
type Config struct {
	Contexts UserContextStore
	Logger   *slog.Logger
}

// GetUserContextInput is the input schema for the getUserContext tool.
// Unlike the gateway's local tool, the user id is explicit here: remote
// catalog consumers carry no ambient acting user.
type GetUserContextInput struct {
	UserID string `json:"user_id" jsonschema:"The id of the user whose context to fetch"`
}

// UpdateUserContextInput is the input schema for the updateUserContext tool.
type UpdateUserContextInput struct {
	UserID        string                   `json:"user_id" jsonschema:"The id of the user whose context to replace"`
	UserProfile   map[string]any           `json:"user_profile" jsonschema:"Free-form profile facts about the user, such as age, goals, risk tolerance"`
	UserPortfolio []store.PortfolioHolding `json:"user_portfolio" jsonschema:"The user's current holdings"`
}

// NewServer creates the MCP catalog server with all tools and prompts
// registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Contexts == nil {
		return nil, errors.New("user context store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
		contexts: cfg.Contexts,
		logger:   logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	s.registerPrompts()

	return s, nil
}

// Run serves the MCP protocol on the given transport. Blocks until the
// context is canceled or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// HTTPHandler returns a streamable HTTP handler for the catalog, for
// consumers that connect over the network instead of stdio.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func (s *Server) registerTools() error {
	getSchema, err := jsonschema.For[GetUserContextInput](nil)
	if err != nil {
		return fmt.Errorf("schema for getUserContext: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "getUserContext",
		Description: "Get the stored investment context (profile and portfolio) for a user.",
		InputSchema: getSchema,
	}, s.getUserContext)

	updateSchema, err := jsonschema.For[UpdateUserContextInput](nil)
	if err != nil {
		return fmt.Errorf("schema for updateUserContext: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "updateUserContext",
		Description: "Replace the stored investment context for a user. The provided profile and portfolio completely replace the existing ones, so fetch the current context first and merge before calling.",
		InputSchema: updateSchema,
	}, s.updateUserContext)

	return nil
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "investment_advisor_prompt",
		Description: "System prompt for a personalised investment advisor scoped to one user.",
		Arguments: []*mcp.PromptArgument{
			{Name: "user_id", Description: "The id of the advised user", Required: true},
		},
	}, s.advisorPrompt)
}

// The input schemas mark user_id required, so the SDK rejects calls
// without one before the handlers run; the handlers can assume it is set.

func (s *Server) getUserContext(ctx context.Context, _ *mcp.CallToolRequest, in GetUserContextInput) (*mcp.CallToolResult, any, error) {
	uc, err := s.contexts.UserContext(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserContextNotFound) {
			return toolError(err.Error()), nil, nil
		}
		return nil, nil, fmt.Errorf("getUserContext: %w", err)
	}

	return toolJSON(uc)
}

func (s *Server) updateUserContext(ctx context.Context, _ *mcp.CallToolRequest, in UpdateUserContextInput) (*mcp.CallToolResult, any, error) {
	uc, err := s.contexts.UpdateUserContext(ctx, in.UserID, in.UserProfile, in.UserPortfolio)
	if err != nil {
		if errors.Is(err, store.ErrUserContextNotFound) {
			return toolError(err.Error()), nil, nil
		}
		return nil, nil, fmt.Errorf("updateUserContext: %w", err)
	}

	s.logger.Debug("user context replaced", "user_id", in.UserID)
	return toolJSON(uc)
}

func (s *Server) advisorPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	userID := req.Params.Arguments["user_id"]
	if userID == "" {
		return nil, errors.New("user_id argument is required")
	}

	return &mcp.GetPromptResult{
		Description: "Personalised investment advisor system prompt",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: gateway.AdvisorPrompt(userID)},
			},
		},
	}, nil
}

// toolError reports a caller mistake as a tool result so the consuming
// agent can see it and recover, rather than a protocol error.
func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// toolJSON renders a value as a JSON text result.
func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
