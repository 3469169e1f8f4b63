// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("DEEPSEEK_API_KEY"),
//	    openai.WithBaseURL("https://api.deepseek.com/v1"),
//	    openai.WithModel("deepseek-chat"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := provider.Complete(ctx, []*types.Message{
//	    types.NewSystemMessage("Return JSON only."),
//	    types.NewUserMessage("Alice met Bob."),
//	}, types.CompletionOptions{MaxOutputTokens: 500})
package llm

import (
	"context"

	"github.com/entrhq/harvest/pkg/types"
)

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport with
// the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication only. Prompt construction and parsing of
// the returned text belong to the caller, which keeps providers reusable and
// testable on their own.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns an error on transport failure, non-2xx status, context
	// cancellation or an empty choice list.
	Complete(ctx context.Context, messages []*types.Message, opts types.CompletionOptions) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}

// WithModel returns p directed at model when p supports cloning and model is
// non-empty. Otherwise p is returned unchanged.
func WithModel(p Provider, model string) Provider {
	if model == "" || model == p.GetModel() {
		return p
	}
	if cloner, ok := p.(ModelCloner); ok {
		return cloner.CloneWithModel(model)
	}
	return p
}
