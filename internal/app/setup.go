package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/investpal/investpal/db"
	"github.com/investpal/investpal/internal/chat"
	"github.com/investpal/investpal/internal/config"
	"github.com/investpal/investpal/internal/gateway"
	"github.com/investpal/investpal/internal/store"
)

const (
	dbPingTimeout       = 5 * time.Second
	catalogCloseTimeout = 10 * time.Second
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool
	a.Store = store.New(pool, logger.With("component", "store"))

	g, err := gateway.NewGenkit(ctx, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("initializing genkit: %w", err)
	}
	a.Genkit = g

	var catalogTools []ai.Tool
	catalog, err := gateway.ConnectCatalog(ctx, g, cfg.CatalogName, cfg.CatalogAddress,
		logger.With("component", "catalog"))
	if err != nil {
		// The advisor still works with only the local context tools; a
		// missing catalog degrades the tool set rather than blocking startup.
		logger.Warn("tool catalog unavailable, continuing with local tools only",
			"address", cfg.CatalogAddress, "error", err)
	} else if catalog != nil {
		a.Catalog = catalog
		catalogTools, err = catalog.Tools(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("listing catalog tools: %w", err)
		}
		logger.Info("tool catalog connected",
			"name", cfg.CatalogName, "tools", len(catalogTools))
	}

	gw, err := gateway.New(gateway.Config{
		Genkit:             g,
		Contexts:           a.Store,
		Logger:             logger.With("component", "gateway"),
		CatalogTools:       catalogTools,
		ModelName:          cfg.Provider + "/" + cfg.ModelName,
		Temperature:        cfg.Temperature,
		ConversationWindow: cfg.ConversationWindow,
		MaxTurns:           cfg.MaxTurns,
		TurnTimeout:        time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gateway: %w", err)
	}
	a.Gateway = gw

	svc, err := chat.New(chat.Config{
		Sessions:  a.Store,
		Responder: gw,
		Logger:    logger.With("component", "chat"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat service: %w", err)
	}
	a.Chat = svc

	return a, nil
}

// SetupStore initializes only the storage half of the application: the
// migrated database pool and the document store. The MCP catalog service
// uses it to avoid dragging in a model provider it never calls.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool
	a.Store = store.New(pool, logger.With("component", "store"))

	return a, nil
}

// provideDBPool runs migrations and creates the pgx connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, dbPingTimeout)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
