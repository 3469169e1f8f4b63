package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"
)

// LLMSection manages LLM provider configuration settings.
type LLMSection struct {
	Model              string
	BaseURL            string
	APIKey             string
	APIKeyFile         string // optional; read when no key is set anywhere else
	SummarizationModel string // optional; if empty, summarization uses Model
	TimeoutSeconds     int    // optional; 0 means the default timeout
	MaxOutputTokens    int    // optional; 0 means the client default
	Temperature        *float64
	mu                 sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Configure the OpenAI-compatible extraction model. summarization_model is optional; if set, activity summaries use it instead of the main model."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"model":               s.Model,
		"base_url":            s.BaseURL,
		"api_key":             s.APIKey,
		"api_key_file":        s.APIKeyFile,
		"summarization_model": s.SummarizationModel,
		"timeout_seconds":     s.TimeoutSeconds,
		"max_output_tokens":   s.MaxOutputTokens,
		"temperature":         temperatureValue(s.Temperature),
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}

	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}

	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}

	if keyFile, ok := data["api_key_file"].(string); ok {
		s.APIKeyFile = keyFile
	}

	if summarizationModel, ok := data["summarization_model"].(string); ok {
		s.SummarizationModel = summarizationModel
	}

	if timeout, ok := asInt(data["timeout_seconds"]); ok {
		s.TimeoutSeconds = timeout
	}

	if maxTokens, ok := asInt(data["max_output_tokens"]); ok {
		s.MaxOutputTokens = maxTokens
	}

	if temperature, ok := asFloat(data["temperature"]); ok {
		s.Temperature = &temperature
	}

	return nil
}

// Validate validates the current configuration. A missing API key is not an
// error here; cycles run without a model and fall back to defaults.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := requireNonNegative("timeout_seconds", float64(s.TimeoutSeconds)); err != nil {
		return err
	}
	if err := requireNonNegative("max_output_tokens", float64(s.MaxOutputTokens)); err != nil {
		return err
	}
	if s.Temperature != nil && (*s.Temperature < 0 || *s.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", *s.Temperature)
	}
	return nil
}

func (s *LLMSection) applyTo(out *Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setIfNotEmpty(&out.Model, s.Model)
	setIfNotEmpty(&out.BaseURL, s.BaseURL)
	setIfNotEmpty(&out.APIKey, s.APIKey)
	setIfNotEmpty(&out.APIKeyFile, s.APIKeyFile)
	setIfNotEmpty(&out.SummarizationModel, s.SummarizationModel)
	if s.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}
	if s.MaxOutputTokens > 0 {
		out.MaxOutputTokens = s.MaxOutputTokens
	}
	if s.Temperature != nil {
		t := *s.Temperature
		out.Temperature = &t
	}
}

// temperatureValue keeps an unset temperature as null in the stored file.
func temperatureValue(t *float64) any {
	if t == nil {
		return nil
	}
	return *t
}
