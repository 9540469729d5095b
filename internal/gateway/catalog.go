package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/mcp"
)

// Catalog is a connection to a remote MCP tool catalog. The advisor's
// market-data tools (quotes, news, fundamentals) live behind it; the
// gateway only sees the ai.Tool values the host exposes.
type Catalog struct {
	host   *mcp.MCPHost
	name   string
	logger *slog.Logger
}

// ConnectCatalog connects to the MCP catalog at address over streamable
// HTTP and returns a Catalog handle. An empty address returns a nil Catalog:
// the advisor then runs with the local context tools only.
func ConnectCatalog(ctx context.Context, g *genkit.Genkit, name, address string, logger *slog.Logger) (*Catalog, error) {
	if address == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	host, err := mcp.NewMCPHost(g, mcp.MCPHostOptions{
		Name:    "investpal",
		Version: "1.0.0",
		MCPServers: []mcp.MCPServerConfig{
			{
				Name: name,
				Config: mcp.MCPClientOptions{
					Name: name,
					StreamableHTTP: &mcp.StreamableHTTPConfig{
						BaseURL: address,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to tool catalog %s at %s: %w", name, address, err)
	}

	logger.Info("connected to tool catalog", "catalog", name, "address", address)
	return &Catalog{host: host, name: name, logger: logger}, nil
}

// Tools returns the tools currently exposed by the catalog, registered with
// Genkit and ready to pass to generation.
func (c *Catalog) Tools(ctx context.Context, g *genkit.Genkit) ([]ai.Tool, error) {
	tools, err := c.host.GetActiveTools(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("listing catalog tools: %w", err)
	}
	c.logger.Debug("fetched catalog tools", "catalog", c.name, "count", len(tools))
	return tools, nil
}

// Close disconnects from the catalog server.
func (c *Catalog) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.host.Disconnect(ctx, c.name); err != nil {
		return fmt.Errorf("disconnecting from catalog %s: %w", c.name, err)
	}
	return nil
}
