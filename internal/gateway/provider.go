package gateway

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/anthropic"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/investpal/investpal/internal/config"
)

// NewGenkit initializes Genkit with the plugin for the configured provider.
// The provider set is closed: openai, googleai, and anthropic. An unknown
// provider is fatal, there is no fallback.
//
// Each plugin reads its API key from its own environment variable
// (OPENAI_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY); config validation
// checks presence before this runs.
func NewGenkit(ctx context.Context, provider string) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch provider {
	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
	case config.ProviderGoogleAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	case config.ProviderAnthropic:
		g = genkit.Init(ctx, genkit.WithPlugins(&anthropic.Anthropic{}))
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, provider)
	}

	if g == nil {
		return nil, fmt.Errorf("initializing genkit with %s provider", provider)
	}
	return g, nil
}
