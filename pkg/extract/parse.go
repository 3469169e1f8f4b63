package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/harvest/pkg/entity"
	"github.com/entrhq/harvest/pkg/llm/parser"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Candidate is one person the model reported.
type Candidate struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship"`
	Context      string `json:"context"`
	Sentiment    string `json:"sentiment" validate:"omitempty,oneof=positive neutral negative"`
}

// Entity converts c into the merge input of the entity store.
func (c Candidate) Entity() entity.Candidate {
	return entity.Candidate{
		Name:         c.Name,
		Relationship: c.Relationship,
		Notes:        c.Context,
	}
}

// Entities converts a batch of candidates.
func Entities(candidates []Candidate) []entity.Candidate {
	out := make([]entity.Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Entity())
	}
	return out
}

// ActivitySummary describes what happened in a session.
type ActivitySummary struct {
	Summary        string   `json:"summary" validate:"required"`
	TasksCompleted int      `json:"tasks_completed" validate:"gte=0"`
	KeyActions     []string `json:"key_actions"`
	TokensEstimate int      `json:"tokens_estimate" validate:"gte=0"`
}

// DefaultSummary is used whenever no summary could be produced.
func DefaultSummary() ActivitySummary {
	return ActivitySummary{
		Summary:        "Session activity",
		TasksCompleted: 0,
		KeyActions:     []string{},
		TokensEstimate: 1000,
	}
}

// ParseCandidates reads a JSON array of candidates out of a model answer.
// Surrounding prose and reasoning blocks are ignored.
func ParseCandidates(answer string) ([]Candidate, error) {
	raw, err := locate(parser.StripThinking(answer), '[', ']')
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	if err := decodeStrict(raw, &candidates, false); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(candidates))
	for i, c := range candidates {
		c.Name = strings.TrimSpace(c.Name)
		c.Relationship = strings.ToLower(strings.TrimSpace(c.Relationship))
		c.Sentiment = strings.ToLower(strings.TrimSpace(c.Sentiment))
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("%w: candidate %d: %v", ErrSchema, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseSummary reads a JSON summary object out of a model answer. Unknown
// fields are rejected. Key actions beyond MaxKeyActions are dropped.
func ParseSummary(answer string) (ActivitySummary, error) {
	raw, err := locate(parser.StripThinking(answer), '{', '}')
	if err != nil {
		return ActivitySummary{}, err
	}

	var s ActivitySummary
	if err := decodeStrict(raw, &s, true); err != nil {
		return ActivitySummary{}, err
	}
	s.Summary = strings.TrimSpace(s.Summary)
	if err := validate.Struct(s); err != nil {
		return ActivitySummary{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if s.KeyActions == nil {
		s.KeyActions = []string{}
	}
	if len(s.KeyActions) > MaxKeyActions {
		s.KeyActions = s.KeyActions[:MaxKeyActions]
	}
	return s, nil
}

// locate returns the text from the first open delimiter to the last close
// delimiter, inclusive.
func locate(s string, opening, closing byte) (string, error) {
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

func decodeStrict(raw string, v any, disallowUnknown bool) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrSchema)
	}
	return nil
}
