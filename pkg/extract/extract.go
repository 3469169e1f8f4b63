// Package extract turns free text into structured facts by prompting an LLM
// and parsing its JSON answer.
//
// Every call is best effort. When the provider fails or the answer does not
// parse, the client returns an empty result (or DefaultSummary) together with
// an error the caller is expected to log and move past.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/entrhq/harvest/pkg/llm"
	"github.com/entrhq/harvest/pkg/llm/tokenizer"
	"github.com/entrhq/harvest/pkg/types"
)

const (
	// MaxPromptChars caps the user prompt sent with any request.
	MaxPromptChars = 15000

	// MaxSummaryInputChars caps the text handed to Summarize.
	MaxSummaryInputChars = 10000

	// MaxKeyActions is how many key actions a summary keeps.
	MaxKeyActions = 5

	// DefaultMaxOutputTokens bounds the length of every answer.
	DefaultMaxOutputTokens = 500

	// DefaultTemperature keeps answers mostly deterministic.
	DefaultTemperature = 0.3
)

var (
	// ErrNoJSON is returned when the answer holds no JSON delimiters.
	ErrNoJSON = errors.New("extract: no JSON found in response")

	// ErrSchema is returned when the JSON does not decode into the expected
	// shape or fails validation.
	ErrSchema = errors.New("extract: response does not match schema")

	// ErrNoProvider is returned when the client has no model to ask, as
	// when no API key is configured.
	ErrNoProvider = errors.New("extract: no LLM provider configured")
)

const entityPrompt = `Extract all people mentioned in this conversation. Return a JSON array where each element has:
- name: person's name
- relationship: one of family, business, friend, client, unknown
- context: brief context about them (1 sentence)
- sentiment: one of positive, neutral, negative

Only return the JSON array, nothing else. If no people are found, return [].`

const summaryPrompt = `Analyze this session and return a JSON object with exactly these fields:
- summary: 1-2 sentence summary of what happened
- tasks_completed: number of tasks or actions completed
- key_actions: list of main actions taken (max 5)
- tokens_estimate: rough estimate of tokens used

Only return the JSON object, nothing else.`

// Client extracts entity candidates and activity summaries.
type Client struct {
	provider        llm.Provider
	summaryProvider llm.Provider
	tokenizer       *tokenizer.Tokenizer
	maxOutputTokens int
	temperature     float64

	promptTokens atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithTokenizer counts prompt tokens with tk. Without it PromptTokens uses a
// character based estimate.
func WithTokenizer(tk *tokenizer.Tokenizer) Option {
	return func(c *Client) {
		c.tokenizer = tk
	}
}

// WithSummaryModel routes Summarize to a different model on the same
// provider, when the provider supports it.
func WithSummaryModel(model string) Option {
	return func(c *Client) {
		if model != "" && c.provider != nil {
			c.summaryProvider = llm.WithModel(c.provider, model)
		}
	}
}

// WithMaxOutputTokens overrides DefaultMaxOutputTokens.
func WithMaxOutputTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxOutputTokens = n
		}
	}
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// NewClient creates a Client on top of provider. A nil provider is allowed:
// every request then fails with ErrNoProvider.
func NewClient(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		provider:        provider,
		maxOutputTokens: DefaultMaxOutputTokens,
		temperature:     DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.summaryProvider == nil {
		c.summaryProvider = provider
	}
	return c
}

// PromptTokens reports how many prompt tokens the client has sent so far.
func (c *Client) PromptTokens() int64 {
	return c.promptTokens.Load()
}

// ExtractEntities asks the model for the people mentioned in text. On any
// failure it returns an empty slice and the cause.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return []Candidate{}, nil
	}

	answer, err := c.complete(ctx, c.provider, entityPrompt, text)
	if err != nil {
		return []Candidate{}, fmt.Errorf("extract: entities: %w", err)
	}

	candidates, err := ParseCandidates(answer)
	if err != nil {
		return []Candidate{}, fmt.Errorf("extract: entities: %w", err)
	}
	return candidates, nil
}

// Summarize asks the model for an activity summary of text. On any failure
// it returns DefaultSummary and the cause.
func (c *Client) Summarize(ctx context.Context, text string) (ActivitySummary, error) {
	if strings.TrimSpace(text) == "" {
		return DefaultSummary(), nil
	}

	answer, err := c.complete(ctx, c.summaryProvider, summaryPrompt, Truncate(text, MaxSummaryInputChars))
	if err != nil {
		return DefaultSummary(), fmt.Errorf("extract: summary: %w", err)
	}

	summary, err := ParseSummary(answer)
	if err != nil {
		return DefaultSummary(), fmt.Errorf("extract: summary: %w", err)
	}
	return summary, nil
}

func (c *Client) complete(ctx context.Context, p llm.Provider, system, user string) (string, error) {
	if p == nil {
		return "", ErrNoProvider
	}
	user = Truncate(user, MaxPromptChars)
	c.promptTokens.Add(int64(c.countTokens(system) + c.countTokens(user)))

	temp := c.temperature
	msg, err := p.Complete(ctx, []*types.Message{
		types.NewSystemMessage(system),
		types.NewUserMessage(user),
	}, types.CompletionOptions{
		MaxOutputTokens: c.maxOutputTokens,
		Temperature:     &temp,
	})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", ErrNoJSON
	}
	return msg.Content, nil
}

func (c *Client) countTokens(text string) int {
	if c.tokenizer != nil {
		return c.tokenizer.Count(text)
	}
	return tokenizer.Estimate(text)
}

// Truncate returns at most n characters of s, never splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
