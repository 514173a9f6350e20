package providers

import (
	"fmt"

	"github.com/jackzampolin/basicbook/internal/config"
)

// FromConfig builds the analysis client named by the configuration.
// API keys are resolved from ${ENV_VAR} references before construction.
func FromConfig(cfg *config.Config) (AnalysisClient, error) {
	switch cfg.Provider {
	case GeminiName, "":
		return NewGeminiClient(GeminiConfig{
			APIKey:       config.ResolveEnvVars(cfg.Gemini.APIKey),
			BaseURL:      cfg.Gemini.BaseURL,
			Model:        cfg.Gemini.Model,
			PollInterval: cfg.Gemini.PollInterval,
			Timeout:      cfg.Gemini.Timeout,
		}), nil
	case OpenAIName:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  config.ResolveEnvVars(cfg.OpenAI.APIKey),
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown analysis provider: %s", cfg.Provider)
	}
}
