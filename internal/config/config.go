// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.investpal/config.yaml or ./config.yaml)
//  3. Default values
//
// Configuration is an explicit value passed into constructors, never read
// from ambient global state, so multiple configurations can coexist in
// tests.
//
// Error handling uses sentinel errors so callers can check categories with
// errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the model provider is not one of the
	// supported set.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAPIKey indicates the API key for the selected provider is
	// missing from the environment.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidWindow indicates the conversation window size is out of range.
	ErrInvalidWindow = errors.New("invalid conversation window")

	// ErrInvalidMaxTurns indicates the tool-loop turn limit is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidCatalogAddress indicates the tool catalog address is invalid.
	ErrInvalidCatalogAddress = errors.New("invalid catalog address")
)

// Model provider identifiers used in Config.Provider. This is a closed set:
// anything else is a fatal configuration error.
const (
	ProviderOpenAI    = "openai"
	ProviderGoogleAI  = "googleai"
	ProviderAnthropic = "anthropic"
)

const (
	// DefaultConversationWindow is the number of trailing messages sent to
	// the model per turn. Older messages stay in storage but are invisible
	// to the model.
	DefaultConversationWindow = 30

	// MaxConversationWindow bounds the window to keep model requests sane.
	MaxConversationWindow = 500

	// DefaultMaxTurns is the default tool-call loop bound per turn.
	DefaultMaxTurns = 8

	// DefaultTurnTimeoutSeconds is the overall deadline for one chat turn,
	// covering the model round trips and every tool call in between.
	DefaultTurnTimeoutSeconds = 120
)

// Config stores application configuration.
type Config struct {
	// Model provider and generation configuration
	Provider    string  `mapstructure:"provider"`   // "openai", "googleai", "anthropic"
	ModelName   string  `mapstructure:"model_name"` // e.g. "gpt-4o", "gemini-2.5-flash", "claude-sonnet-4-5"
	Temperature float64 `mapstructure:"temperature"`

	// Turn orchestration
	ConversationWindow int `mapstructure:"conversation_window"` // last K messages sent to the model
	MaxTurns           int `mapstructure:"max_turns"`           // tool-loop bound per turn
	TurnTimeoutSeconds int `mapstructure:"turn_timeout_seconds"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Tool/prompt catalog (MCP) configuration
	CatalogName    string `mapstructure:"catalog_name"`    // server name used in logs and prompt lookups
	CatalogAddress string `mapstructure:"catalog_address"` // streamable HTTP endpoint, empty = stdio self-serve only

	// Server addresses
	HTTPAddr string `mapstructure:"http_addr"` // chat API listen address
	MCPAddr  string `mapstructure:"mcp_addr"`  // catalog service listen address (HTTP transport)
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".investpal")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model_name", "gpt-4o")
	v.SetDefault("temperature", 0.3)

	v.SetDefault("conversation_window", DefaultConversationWindow)
	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("turn_timeout_seconds", DefaultTurnTimeoutSeconds)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "investpal")
	v.SetDefault("postgres_password", "investpal_dev_password")
	v.SetDefault("postgres_db_name", "investpal")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("catalog_name", "investpal")
	v.SetDefault("catalog_address", "http://localhost:9000/mcp")

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("mcp_addr", ":9000")
}

// bindEnvVariables binds runtime-override environment variables.
// Provider API keys (OPENAI_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY) are
// read directly by the Genkit provider plugins, not via Viper; Validate only
// checks their presence for the selected provider.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "INVESTPAL_PROVIDER")
	mustBind("model_name", "INVESTPAL_MODEL_NAME")
	mustBind("conversation_window", "INVESTPAL_CONVERSATION_WINDOW")
	mustBind("catalog_address", "INVESTPAL_CATALOG_ADDRESS")
	mustBind("http_addr", "INVESTPAL_HTTP_ADDR")
	mustBind("mcp_addr", "INVESTPAL_MCP_ADDR")
	mustBind("postgres_password", "INVESTPAL_POSTGRES_PASSWORD")
}
