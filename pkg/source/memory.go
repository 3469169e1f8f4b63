package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/harvest/pkg/extract"
)

const (
	// MemorySourceName is the Source of documents produced by MemoryNotes.
	MemorySourceName = "memory"

	// LongTermLabel labels the long-term memory document.
	LongTermLabel = "long-term"

	// MaxLongTermChars is how much of the long-term memory file is read.
	MaxLongTermChars = 5000

	dailyNoteLayout = "2006-01-02"
)

// MemoryNotes reads today's and yesterday's daily notes (<Dir>/<date>.md)
// and the head of a long-term memory file.
type MemoryNotes struct {
	Dir          string
	LongTermPath string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Name implements Collector.
func (m *MemoryNotes) Name() string { return MemorySourceName }

// Collect implements Collector.
func (m *MemoryNotes) Collect(ctx context.Context) ([]Document, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	today := now()

	var (
		docs []Document
		errs []error
	)

	if m.Dir != "" {
		for _, day := range []time.Time{today, today.AddDate(0, 0, -1)} {
			if err := ctx.Err(); err != nil {
				return docs, err
			}
			label := day.Format(dailyNoteLayout)
			text, ok, err := readText(filepath.Join(m.Dir, label+".md"))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				docs = append(docs, Document{Source: MemorySourceName, Label: label, Text: text})
			}
		}
	}

	if m.LongTermPath != "" {
		text, ok, err := readText(m.LongTermPath)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			docs = append(docs, Document{
				Source: MemorySourceName,
				Label:  LongTermLabel,
				Text:   extract.Truncate(text, MaxLongTermChars),
			})
		}
	}

	return docs, errors.Join(errs...)
}

func readText(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}
