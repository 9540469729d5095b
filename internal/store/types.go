package store

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the end user.
	RoleUser Role = "user"
	// RoleAgent marks a message produced by the assistant.
	RoleAgent Role = "agent"
)

// Message is a single entry in a session's conversation log.
// Messages are stored in the order they were appended; that order is the
// conversation order.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a conversation between one user and the assistant.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortfolioHolding is one position in a user's investment portfolio.
type PortfolioHolding struct {
	AssetClass string  `json:"asset_class"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
}

// UserContext is the per-user investment profile the assistant personalizes
// against. Profile is free-form: the advisor prompt describes the keys the
// model should expect, but the store does not interpret them.
type UserContext struct {
	UserID    string             `json:"user_id"`
	Profile   map[string]any     `json:"user_profile"`
	Portfolio []PortfolioHolding `json:"user_portfolio"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
