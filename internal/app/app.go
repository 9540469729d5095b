// Package app provides application initialization and dependency wiring.
//
// Setup builds the full dependency graph: database pool (with migrations),
// document store, Genkit instance with the configured model provider, the
// remote tool catalog connection, the advisor gateway, and the chat service.
// Close releases everything in reverse order.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investpal/investpal/internal/chat"
	"github.com/investpal/investpal/internal/config"
	"github.com/investpal/investpal/internal/gateway"
	"github.com/investpal/investpal/internal/store"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit  *genkit.Genkit
	DBPool  *pgxpool.Pool
	Store   *store.Store
	Catalog *gateway.Catalog
	Gateway *gateway.Gateway
	Chat    *chat.Service

	logger *slog.Logger
}

// Close gracefully releases all resources. Safe to call on a partially
// initialized App; Setup relies on that for cleanup on failure.
func (a *App) Close() error {
	if a.logger != nil {
		a.logger.Info("shutting down application")
	}

	if a.Catalog != nil {
		ctx, cancel := context.WithTimeout(context.Background(), catalogCloseTimeout)
		defer cancel()
		if err := a.Catalog.Close(ctx); err != nil && a.logger != nil {
			a.logger.Warn("disconnecting tool catalog", "error", err)
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.logger != nil {
			a.logger.Info("database pool closed")
		}
	}

	return nil
}
