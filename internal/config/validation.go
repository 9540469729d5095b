package config

import (
	"fmt"
	"net/url"
	"os"
)

// validSSLModes is the set of sslmode values pgx accepts.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// providerAPIKeyEnv maps each supported provider to the environment variable
// its Genkit plugin reads the API key from.
var providerAPIKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGoogleAI:  "GEMINI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Validate checks the configuration for errors (fail-fast at startup).
// An unknown provider is fatal: there is no fallback.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if _, ok := providerAPIKeyEnv[c.Provider]; !ok {
		return fmt.Errorf("%w: %q (supported: openai, googleai, anthropic)", ErrInvalidProvider, c.Provider)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v (must be in [0, 2])", ErrInvalidTemperature, c.Temperature)
	}

	if c.ConversationWindow < 1 || c.ConversationWindow > MaxConversationWindow {
		return fmt.Errorf("%w: %d (must be in [1, %d])", ErrInvalidWindow, c.ConversationWindow, MaxConversationWindow)
	}

	if c.MaxTurns < 1 || c.MaxTurns > 50 {
		return fmt.Errorf("%w: %d (must be in [1, 50])", ErrInvalidMaxTurns, c.MaxTurns)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be in [1, 65535])", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	if c.CatalogAddress != "" {
		u, err := url.Parse(c.CatalogAddress)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: %q (must be an http(s) URL)", ErrInvalidCatalogAddress, c.CatalogAddress)
		}
	}

	return nil
}

// ValidateServe checks serve-mode requirements on top of Validate: the
// selected provider's API key must be present. The MCP catalog service
// skips this since it never calls a model.
func (c *Config) ValidateServe() error {
	envVar := providerAPIKeyEnv[c.Provider]
	if os.Getenv(envVar) == "" {
		return fmt.Errorf("%w: %s is required for provider %q", ErrMissingAPIKey, envVar, c.Provider)
	}
	return nil
}
