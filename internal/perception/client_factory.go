package perception

import (
	"context"
	"fmt"

	"github.com/RUBESHR7/compass-qa/internal/config"
	"github.com/RUBESHR7/compass-qa/internal/prompt"
)

// NewClientFromConfig builds the configured provider client wrapped in a
// TracingClient.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (*TracingClient, error) {
	switch cfg.LLM.Provider {
	case "", providerGemini:
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.LLM.Provider)
	}
	if !cfg.LLM.HasAPIKey() {
		return nil, ErrMissingCredential
	}

	gc := DefaultGeminiConfig(cfg.LLM.APIKey)
	if cfg.LLM.Model != "" {
		gc.Model = cfg.LLM.Model
	}
	gc.BaseURL = cfg.LLM.BaseURL
	gc.Timeout = cfg.GetLLMTimeout()
	gc.Temperature = cfg.LLM.Temperature
	if cfg.LLM.StructuredOutput {
		gc.ResponseSchema = prompt.ResponseSchema()
	}

	client, err := NewGeminiClient(ctx, gc)
	if err != nil {
		return nil, err
	}
	return NewTracingClient(client), nil
}
