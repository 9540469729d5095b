package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/investpal/investpal/internal/store"
)

type fakeContexts struct {
	contexts  map[string]*store.UserContext
	updateErr error

	lastProfile   map[string]any
	lastPortfolio []store.PortfolioHolding
}

func newFakeContexts() *fakeContexts {
	return &fakeContexts{contexts: map[string]*store.UserContext{}}
}

func (f *fakeContexts) UserContext(_ context.Context, userID string) (*store.UserContext, error) {
	uc, ok := f.contexts[userID]
	if !ok {
		return nil, store.ErrUserContextNotFound
	}
	return uc, nil
}

func (f *fakeContexts) UpdateUserContext(_ context.Context, userID string, profile map[string]any, portfolio []store.PortfolioHolding) (*store.UserContext, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.contexts[userID]; !ok {
		return nil, store.ErrUserContextNotFound
	}
	f.lastProfile = profile
	f.lastPortfolio = portfolio
	uc := &store.UserContext{
		UserID:    userID,
		Profile:   profile,
		Portfolio: portfolio,
		UpdatedAt: time.Now(),
	}
	f.contexts[userID] = uc
	return uc, nil
}

// connectServer builds a catalog server over the fake store and an SDK
// client connected via in-memory transports.
func connectServer(t *testing.T, contexts *fakeContexts) *mcp.ClientSession {
	t.Helper()

	server, err := NewServer(Config{
		Contexts: contexts,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func TestNewServerRequiresStore(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Error("NewServer() expected error, got nil")
	}
}

func TestListTools(t *testing.T) {
	session := connectServer(t, newFakeContexts())

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
	}
	sort.Strings(names)

	want := []string{"getUserContext", "updateUserContext"}
	if len(names) != len(want) {
		t.Fatalf("ListTools() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCallGetUserContext(t *testing.T) {
	contexts := newFakeContexts()
	contexts.contexts["alice"] = &store.UserContext{
		UserID:    "alice",
		Profile:   map[string]any{"risk_tolerance": "low"},
		Portfolio: []store.PortfolioHolding{{AssetClass: "etf", Symbol: "VTI", Name: "Vanguard Total Market", Quantity: 3}},
	}
	session := connectServer(t, contexts)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "getUserContext",
		Arguments: map[string]any{"user_id": "alice"},
	})
	if err != nil {
		t.Fatalf("CallTool(getUserContext) error: %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool(getUserContext) returned error result: %v", result.Content)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] type = %T, want *mcp.TextContent", result.Content[0])
	}

	var uc store.UserContext
	if err := json.Unmarshal([]byte(text.Text), &uc); err != nil {
		t.Fatalf("parsing tool result: %v", err)
	}
	if uc.Profile["risk_tolerance"] != "low" {
		t.Errorf("profile = %v", uc.Profile)
	}
	if len(uc.Portfolio) != 1 || uc.Portfolio[0].Symbol != "VTI" {
		t.Errorf("portfolio = %v", uc.Portfolio)
	}
}

func TestCallGetUserContextUnknownUser(t *testing.T) {
	session := connectServer(t, newFakeContexts())

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "getUserContext",
		Arguments: map[string]any{"user_id": "ghost"},
	})
	if err != nil {
		t.Fatalf("CallTool(getUserContext) error: %v", err)
	}
	if !result.IsError {
		t.Fatal("CallTool(getUserContext) expected error result for unknown user")
	}
}

func TestCallUpdateUserContextReplaces(t *testing.T) {
	contexts := newFakeContexts()
	contexts.contexts["alice"] = &store.UserContext{
		UserID:  "alice",
		Profile: map[string]any{"age": float64(30)},
	}
	session := connectServer(t, contexts)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "updateUserContext",
		Arguments: map[string]any{
			"user_id":      "alice",
			"user_profile": map[string]any{"risk_tolerance": "high"},
			"user_portfolio": []map[string]any{
				{"asset_class": "stock", "symbol": "NVDA", "name": "NVIDIA", "quantity": 2},
			},
		},
	})
	if err != nil {
		t.Fatalf("CallTool(updateUserContext) error: %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool(updateUserContext) returned error result: %v", result.Content)
	}

	if contexts.lastProfile["risk_tolerance"] != "high" {
		t.Errorf("profile = %v", contexts.lastProfile)
	}
	if _, ok := contexts.lastProfile["age"]; ok {
		t.Error("update merged instead of replacing: old profile key survived")
	}
	if len(contexts.lastPortfolio) != 1 || contexts.lastPortfolio[0].Symbol != "NVDA" {
		t.Errorf("portfolio = %v", contexts.lastPortfolio)
	}
}

// Both tool schemas mark user_id required, so a call without it is
// rejected by the protocol before the handler runs.
func TestCallToolMissingUserID(t *testing.T) {
	session := connectServer(t, newFakeContexts())

	for _, name := range []string{"getUserContext", "updateUserContext"} {
		_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      name,
			Arguments: map[string]any{},
		})
		if err == nil {
			t.Fatalf("CallTool(%s) without user_id expected error", name)
		}
		if !strings.Contains(err.Error(), "user_id") {
			t.Errorf("CallTool(%s) error = %v, want mention of user_id", name, err)
		}
	}
}

func TestAdvisorPrompt(t *testing.T) {
	session := connectServer(t, newFakeContexts())

	prompts, err := session.ListPrompts(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListPrompts() error: %v", err)
	}
	if len(prompts.Prompts) != 1 || prompts.Prompts[0].Name != "investment_advisor_prompt" {
		t.Fatalf("ListPrompts() = %v", prompts.Prompts)
	}

	result, err := session.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "investment_advisor_prompt",
		Arguments: map[string]string{"user_id": "alice"},
	})
	if err != nil {
		t.Fatalf("GetPrompt() error: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(result.Messages))
	}

	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", result.Messages[0].Content)
	}
	if !strings.Contains(text.Text, "user_id = alice") {
		t.Error("prompt does not carry the user id")
	}
	if !strings.Contains(text.Text, "getUserContext") {
		t.Error("prompt does not reference the context tools")
	}
}

func TestAdvisorPromptRequiresUserID(t *testing.T) {
	session := connectServer(t, newFakeContexts())

	_, err := session.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "investment_advisor_prompt",
		Arguments: map[string]string{},
	})
	if err == nil {
		t.Fatal("GetPrompt() without user_id expected error")
	}
}
