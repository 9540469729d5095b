// Package gateway mediates between the chat layer and the model provider.
// It owns the provider switch, the system prompt, the tool set (local
// context tools plus the remote catalog), the agentic tool loop, and the
// structured-output constraint for UI turns.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/investpal/investpal/internal/genui"
	"github.com/investpal/investpal/internal/store"
)

const (
	// DefaultTurnTimeout bounds a whole advisor turn, tool calls included.
	DefaultTurnTimeout = 2 * time.Minute

	// fallbackResponseMessage is returned when the model produces an empty
	// text response.
	fallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

	// reaskPrompt asks the model to correct an unparseable UI payload. One
	// correction attempt is allowed before the turn fails.
	reaskPrompt = "Your previous reply could not be parsed as a valid response: %v. Reply again with only a single JSON object that validates against the schema in the system instructions. No prose, no code fences."
)

// Sentinel errors for gateway operations.
var (
	// ErrGeneration wraps every turn-fatal gateway failure. The API layer
	// maps it to 502.
	ErrGeneration = errors.New("generation failed")

	// ErrMaxTurnsExceeded indicates the tool loop did not converge within
	// the configured turn budget.
	ErrMaxTurnsExceeded = errors.New("tool loop exceeded max turns")

	// ErrInvalidUIResponse indicates the model's final output was not a
	// valid structured UI payload even after a correction attempt.
	ErrInvalidUIResponse = errors.New("model output is not a valid UI response")
)

// generateFunc matches genkit.Generate; tests swap in scripted fakes.
type generateFunc func(ctx context.Context, g *genkit.Genkit, opts ...ai.GenerateOption) (*ai.ModelResponse, error)

// Config contains all required parameters for the Gateway.
type Config struct {
	Genkit   *genkit.Genkit
	Contexts UserContextStore
	Logger   *slog.Logger

	// CatalogTools are the remote catalog's tools, fetched at startup.
	// The local context tools are registered by New and always present.
	CatalogTools []ai.Tool

	ModelName          string  // Provider-qualified model name (e.g. "openai/gpt-4o")
	Temperature        float64 // Sampling temperature, [0, 2]
	ConversationWindow int     // Last K messages the model sees
	MaxTurns           int     // Model calls per turn before the loop fails
	TurnTimeout        time.Duration

	// RateLimiter throttles model calls (nil = default 10 rps, burst 30).
	RateLimiter *rate.Limiter
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Contexts == nil {
		return errors.New("user context store is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Gateway produces advisor responses for conversation turns.
//
// All configuration is captured immutably at construction, so a single
// Gateway is safe for concurrent use across sessions and users.
type Gateway struct {
	g      *genkit.Genkit
	logger *slog.Logger

	modelName   string
	temperature float64
	window      int
	maxTurns    int
	turnTimeout time.Duration

	limiter  *rate.Limiter
	generate generateFunc

	toolRefs  []ai.ToolRef
	toolNames string

	uiSchema []byte
}

// New creates a Gateway. It registers the local context tools with Genkit,
// merges in the catalog tools, and precomputes the UI response schema.
func New(cfg Config) (*Gateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	window := cfg.ConversationWindow
	if window <= 0 {
		window = 30
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 8
	}
	turnTimeout := cfg.TurnTimeout
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}

	tools := RegisterContextTools(cfg.Genkit, cfg.Contexts, cfg.Logger)
	tools = append(tools, cfg.CatalogTools...)

	toolRefs := make([]ai.ToolRef, len(tools))
	names := make([]string, len(tools))
	for i, t := range tools {
		toolRefs[i] = t
		names[i] = t.Name()
	}

	uiSchema, err := genui.ResponseSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("building UI response schema: %w", err)
	}

	gw := &Gateway{
		g:           cfg.Genkit,
		logger:      cfg.Logger,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		window:      window,
		maxTurns:    maxTurns,
		turnTimeout: turnTimeout,
		limiter:     limiter,
		generate:    genkit.Generate,
		toolRefs:    toolRefs,
		toolNames:   strings.Join(names, ", "),
		uiSchema:    uiSchema,
	}

	gw.logger.Info("gateway initialized",
		"model", gw.modelName,
		"tools", gw.toolNames,
		"window", gw.window,
		"maxTurns", gw.maxTurns,
	)
	return gw, nil
}

// RespondText produces a plain-text advisor response for the conversation.
// The last message is expected to be the user's new message; the model only
// sees the trailing window of the conversation.
func (gw *Gateway) RespondText(ctx context.Context, userID string, conversation []store.Message) (string, error) {
	ctx, cancel := context.WithTimeout(withUserID(ctx, userID), gw.turnTimeout)
	defer cancel()

	resp, err := gw.respond(ctx, systemPrompt(userID), gw.buildMessages(conversation))
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		gw.logger.Warn("model returned empty response", "user_id", userID)
		return fallbackResponseMessage, nil
	}
	return text, nil
}

// RespondUI produces a structured UI advisor response for the conversation.
// The model is constrained by the component-union schema embedded in the
// system prompt; an unparseable reply gets one correction round before the
// turn fails with ErrInvalidUIResponse.
func (gw *Gateway) RespondUI(ctx context.Context, userID string, conversation []store.Message) (*genui.Response, error) {
	ctx, cancel := context.WithTimeout(withUserID(ctx, userID), gw.turnTimeout)
	defer cancel()

	system := uiSystemPrompt(userID, gw.uiSchema)
	messages := gw.buildMessages(conversation)

	resp, err := gw.respond(ctx, system, messages)
	if err != nil {
		return nil, err
	}

	parsed, parseErr := parseUIResponse(resp.Text())
	if parseErr == nil {
		return parsed, nil
	}

	gw.logger.Warn("unparseable UI response, re-asking",
		"user_id", userID, "error", parseErr)

	messages = append(messages,
		resp.Message,
		ai.NewUserMessage(ai.NewTextPart(fmt.Sprintf(reaskPrompt, parseErr))),
	)
	resp, err = gw.respond(ctx, system, messages)
	if err != nil {
		return nil, err
	}

	parsed, parseErr = parseUIResponse(resp.Text())
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrGeneration, ErrInvalidUIResponse, parseErr)
	}
	return parsed, nil
}

// respond runs the agentic loop: generate, execute any requested tools,
// feed results back, repeat until the model answers with no tool requests
// or the turn budget runs out.
//
// Tool execution failures never abort the loop. The error text is packaged
// into the tool response so the model can react to it, which keeps a single
// flaky market-data tool from sinking the whole turn.
func (gw *Gateway) respond(ctx context.Context, system string, messages []*ai.Message) (*ai.ModelResponse, error) {
	msgs := messages

	for turn := 0; turn < gw.maxTurns; turn++ {
		if err := gw.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for rate limiter: %w", ErrGeneration, err)
		}

		resp, err := gw.generate(ctx, gw.g,
			ai.WithModelName(gw.modelName),
			ai.WithSystem(system),
			ai.WithMessages(msgs...),
			ai.WithTools(gw.toolRefs...),
			ai.WithReturnToolRequests(true),
			ai.WithConfig(&ai.GenerationCommonConfig{Temperature: gw.temperature}),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}

		toolRequests := resp.ToolRequests()
		if len(toolRequests) == 0 {
			return resp, nil
		}

		gw.logger.Debug("executing tool requests", "turn", turn, "count", len(toolRequests))

		parts := make([]*ai.Part, 0, len(toolRequests))
		for _, req := range toolRequests {
			parts = append(parts, gw.executeTool(ctx, req))
		}
		msgs = append(msgs, resp.Message, ai.NewMessage(ai.RoleTool, nil, parts...))
	}

	return nil, fmt.Errorf("%w: %w (limit %d)", ErrGeneration, ErrMaxTurnsExceeded, gw.maxTurns)
}

// executeTool runs one requested tool and always returns a tool-response
// part: failures become an {"error": ...} payload instead of propagating.
func (gw *Gateway) executeTool(ctx context.Context, req *ai.ToolRequest) *ai.Part {
	var output any

	tool := genkit.LookupTool(gw.g, req.Name)
	switch {
	case tool == nil:
		gw.logger.Warn("model requested unknown tool", "tool", req.Name)
		output = map[string]any{"error": fmt.Sprintf("tool %q is not available", req.Name)}
	default:
		out, err := tool.RunRaw(ctx, req.Input)
		if err != nil {
			gw.logger.Warn("tool execution failed", "tool", req.Name, "error", err)
			output = map[string]any{"error": err.Error()}
		} else {
			output = out
		}
	}

	return ai.NewToolResponsePart(&ai.ToolResponse{
		Name:   req.Name,
		Ref:    req.Ref,
		Output: output,
	})
}

// buildMessages converts the trailing conversation window to model
// messages. Storage keeps the full history; the model never sees more than
// the last K entries.
func (gw *Gateway) buildMessages(conversation []store.Message) []*ai.Message {
	if len(conversation) > gw.window {
		conversation = conversation[len(conversation)-gw.window:]
	}

	msgs := make([]*ai.Message, 0, len(conversation))
	for _, m := range conversation {
		if m.Role == store.RoleAgent {
			msgs = append(msgs, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		} else {
			msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return msgs
}

// parseUIResponse strictly decodes the model's final text as a structured
// UI payload. Markdown code fences are tolerated and stripped; anything
// else non-JSON fails the parse.
func parseUIResponse(text string) (*genui.Response, error) {
	return genui.ParseResponse([]byte(stripFences(text)))
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
