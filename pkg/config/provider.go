package config

import (
	"fmt"

	"github.com/entrhq/harvest/pkg/llm/openai"
)

// BuildProvider creates the OpenAI-compatible provider described by s.
// It fails when no API key was resolved.
func BuildProvider(s Settings) (*openai.Provider, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("API key is required. Set %s or %s, configure llm.api_key in ~/.harvest/config.json, or write it to %s",
			EnvAPIKey, EnvDeepSeekAPIKey, s.APIKeyFile)
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(s.Model),
		openai.WithTimeout(s.Timeout),
	}
	if s.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(s.BaseURL))
	}

	provider, err := openai.NewProvider(s.APIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}
