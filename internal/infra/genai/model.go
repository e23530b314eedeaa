// Package genai talks to the hosted generation service for price, trend, recommendation and image answers.
package genai

import (
	"context"

	"farmlink/config"
	"farmlink/internal/domain/constants"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultGoogleModel = "gemini-2.0-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// NewModel opens the configured generation backend.
func NewModel(ctx context.Context, appCfg *config.Config) (llms.Model, error) {
	cfg := appCfg.GenAI
	if cfg == nil {
		return nil, errors.New("genai config is required")
	}

	switch cfg.Provider {
	case constants.GenAIProviderGoogleAI, "":
		model := cfg.Model
		if model == "" {
			model = defaultGoogleModel
		}

		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(model),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create googleai client")
		}

		return llm, nil

	case constants.GenAIProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}

		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}

		llm, err := openai.New(opts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create openai client")
		}

		return llm, nil

	default:
		return nil, errors.Errorf("unknown genai provider: %s", cfg.Provider)
	}
}
