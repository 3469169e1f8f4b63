// Package tokenizer counts tokens the way OpenAI-compatible models do.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used by current chat models.
const DefaultEncoding = "cl100k_base"

// Tokenizer wraps a tiktoken encoding. It is safe for concurrent use.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
	mu  sync.Mutex
}

// New loads the default encoding. Loading may need network access the first
// time the BPE ranks are fetched, so callers should treat failure as
// "no tokenizer" rather than a fatal condition.
func New() (*Tokenizer, error) {
	return NewWithEncoding(DefaultEncoding)
}

// NewWithEncoding loads a named encoding.
func NewWithEncoding(encoding string) (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if t == nil || text == "" {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

// Estimate is the fixed characters-per-token approximation used where no
// tokenizer is available: len(text) / 4.
func Estimate(text string) int {
	return len(text) / 4
}
