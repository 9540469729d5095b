package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	mcpSDK "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/investpal/investpal/internal/app"
	"github.com/investpal/investpal/internal/config"
	"github.com/investpal/investpal/internal/mcpserver"
)

// runMCP starts the MCP catalog service on stdio and streamable HTTP.
// Stdio serves a single parent process (the usual MCP launch mode); the
// HTTP listener serves networked consumers like the gateway's catalog
// connection.
func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting MCP catalog service", "version", AppVersion)

	a, err := app.SetupStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	server, err := mcpserver.NewServer(mcpserver.Config{
		Contexts: a.Store,
		Logger:   logger.With("component", "mcpserver"),
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.MCPAddr,
		Handler:           server.HTTPHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("MCP HTTP transport ready", "addr", cfg.MCPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("MCP HTTP server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		logger.Info("MCP stdio transport ready")
		if err := server.Run(ctx, &mcpSDK.StdioTransport{}); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("MCP stdio server: %w", err)
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutting down MCP HTTP server", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("MCP catalog service shut down gracefully")
	return nil
}
