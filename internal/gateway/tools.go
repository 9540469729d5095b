package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/investpal/investpal/internal/store"
)

// UserContextStore is the slice of the store the context tools need.
type UserContextStore interface {
	UserContext(ctx context.Context, userID string) (*store.UserContext, error)
	UpdateUserContext(ctx context.Context, userID string, profile map[string]any, portfolio []store.PortfolioHolding) (*store.UserContext, error)
}

// userIDKey is the context key carrying the acting user's id into tool
// executions. A typed key keeps it collision-free; a request-scoped value
// keeps the gateway safe for concurrent turns of different users.
type userIDKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// errNoActingUser is returned by context tools invoked outside a user turn.
var errNoActingUser = errors.New("no acting user in context")

// UpdateUserContextInput is the model-facing input for the
// updateUserContext tool. The user id is not part of it: tools always act
// on the user whose turn is being processed.
type UpdateUserContextInput struct {
	UserProfile   map[string]any           `json:"user_profile" jsonschema_description:"General information about the user. Must be the complete user profile, as it will replace the existing one."`
	UserPortfolio []store.PortfolioHolding `json:"user_portfolio" jsonschema_description:"List of portfolio holdings. Must be the complete portfolio, as it will replace the existing one."`
}

// GetUserContextInput is the (empty) input for the getUserContext tool.
type GetUserContextInput struct{}

// RegisterContextTools registers the getUserContext and updateUserContext
// tools with Genkit and returns them for inclusion in the gateway tool set.
// Both act on the user carried in the request context.
func RegisterContextTools(g *genkit.Genkit, contexts UserContextStore, logger *slog.Logger) []ai.Tool {
	getTool := genkit.DefineTool(
		g, "getUserContext",
		"Get the user context for your client, including their profile and portfolio holdings.",
		func(ctx *ai.ToolContext, _ GetUserContextInput) (*store.UserContext, error) {
			userID, ok := userIDFromContext(ctx.Context)
			if !ok {
				return nil, errNoActingUser
			}
			uc, err := contexts.UserContext(ctx.Context, userID)
			if err != nil {
				return nil, err
			}
			logger.Debug("tool getUserContext", "user_id", userID, "holdings", len(uc.Portfolio))
			return uc, nil
		},
	)

	updateTool := genkit.DefineTool(
		g, "updateUserContext",
		"Update the user context for your client, including their profile and portfolio holdings. The provided context completely replaces the existing one, so the entire updated object must be provided.",
		func(ctx *ai.ToolContext, input UpdateUserContextInput) (*store.UserContext, error) {
			userID, ok := userIDFromContext(ctx.Context)
			if !ok {
				return nil, errNoActingUser
			}
			uc, err := contexts.UpdateUserContext(ctx.Context, userID, input.UserProfile, input.UserPortfolio)
			if err != nil {
				return nil, err
			}
			logger.Debug("tool updateUserContext", "user_id", userID, "holdings", len(uc.Portfolio))
			return uc, nil
		},
	)

	return []ai.Tool{getTool, updateTool}
}
