package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// ChatSourceName is the Source of documents produced by ChatHistory.
const ChatSourceName = "chat"

// DefaultChatPatterns are the file name patterns scanned when none are set.
var DefaultChatPatterns = []string{"*.json", "messages*.json", "history*.json"}

// ChatHistory reads exported chat messages from the JSON files in Dir whose
// names match one of Patterns. A file holds either an array of messages or
// an object with a "messages" array.
type ChatHistory struct {
	Dir      string
	Patterns []string
}

// Name implements Collector.
func (c *ChatHistory) Name() string { return ChatSourceName }

// Collect implements Collector. Each matching file is read once, in name
// order, no matter how many patterns match it.
func (c *ChatHistory) Collect(ctx context.Context) ([]Document, error) {
	if c.Dir == "" {
		return nil, nil
	}

	patterns := c.Patterns
	if len(patterns) == 0 {
		patterns = DefaultChatPatterns
	}
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid chat pattern '%s': %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", c.Dir, err)
	}

	var (
		docs []Document
		errs []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !matchesAny(matchers, entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return docs, err
		}

		fileDocs, err := readChatFile(filepath.Join(c.Dir, entry.Name()), entry.Name())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, fileDocs...)
	}
	return docs, errors.Join(errs...)
}

func matchesAny(matchers []glob.Glob, name string) bool {
	for _, g := range matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func readChatFile(path, name string) ([]Document, error) {
	raw, ok, err := readJSONC(path)
	if err != nil || !ok {
		return nil, err
	}

	var messages []json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		var wrapped struct {
			Messages []json.RawMessage `json:"messages"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			// Neither shape; not a chat export.
			return nil, nil
		}
		messages = wrapped.Messages
	}

	docs := make([]Document, 0, len(messages))
	for i, msg := range messages {
		docs = append(docs, Document{
			Source: ChatSourceName,
			Label:  fmt.Sprintf("%s#%d", name, i),
			Text:   compact(msg),
		})
	}
	return docs, nil
}
