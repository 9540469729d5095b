// Package cmd contains the InvestPal entry points: the HTTP API server
// (serve), the MCP catalog service (mcp), and version/help output.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/investpal/investpal/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the InvestPal application.
// Designed to be called from main() and testable in unit tests.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			initLogger()
			return runServe()
		case "mcp":
			initLogger()
			return runMCP()
		case "version", "--version", "-v":
			printVersion()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	initLogger()
	return runServe()
}

// initLogger installs the default structured logger.
//
// Logs go to stderr: the MCP stdio transport reserves stdout for JSON-RPC
// frames. DEBUG in the environment enables debug level.
func initLogger() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))
}

func printVersion() {
	fmt.Printf("InvestPal v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println(`InvestPal - personalised investment advisor backend

Usage:
  investpal [command]

Commands:
  serve     Start the HTTP chat API server (default)
  mcp       Start the MCP catalog service (stdio + HTTP)
  version   Show version information
  help      Show this help

Environment:
  INVESTPAL_PROVIDER         Model provider: openai, googleai, anthropic
  INVESTPAL_MODEL_NAME       Model name for the selected provider
  INVESTPAL_HTTP_ADDR        Chat API listen address (default :8080)
  INVESTPAL_MCP_ADDR         Catalog service listen address (default :9000)
  INVESTPAL_CATALOG_ADDRESS  Remote tool catalog URL (empty disables it)
  DATABASE_URL               PostgreSQL connection URL
  DEBUG                      Any value enables debug logging`)
}
