package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/entrhq/harvest/pkg/storage"
)

// Log is the append-only interface the sync engine writes through.
type Log interface {
	Append(ctx context.Context, rec Record) error
}

// FileLog keeps the audit log as a JSON array, newest first.
type FileLog struct {
	path string
}

// NewFileLog returns a FileLog backed by path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path returns the backing file path.
func (l *FileLog) Path() string {
	return l.path
}

// Records returns the stored log. A missing or corrupt file is empty.
func (l *FileLog) Records(_ context.Context) []Record {
	var records []Record
	err := storage.ReadJSON(l.path, &records)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		slog.Debug("audit: ignoring unreadable audit log", "path", l.path, "err", err)
		return nil
	}
	return records
}

// Append inserts rec at the head of the log and persists it atomically.
func (l *FileLog) Append(ctx context.Context, rec Record) error {
	records := Append(l.Records(ctx), rec)
	if err := storage.WriteJSON(l.path, records); err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}
