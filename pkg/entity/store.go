package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/entrhq/harvest/pkg/storage"
)

// Store is the read/write interface for persisted entity records.
type Store interface {
	// Load returns the stored records. A missing or corrupt store is empty.
	Load(ctx context.Context) []Record
	Save(ctx context.Context, records []Record) error
}

// FileStore keeps records as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads all records, treating a missing or corrupt file as empty.
func (fs *FileStore) Load(_ context.Context) []Record {
	var records []Record
	err := storage.ReadJSON(fs.path, &records)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		slog.Debug("entity: ignoring unreadable entity store", "path", fs.path, "err", err)
		return nil
	}
	return records
}

// Save atomically replaces the store contents.
func (fs *FileStore) Save(_ context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	return storage.WriteJSON(fs.path, records)
}

// MergeInto loads the store, merges candidates and saves only when something
// was inserted. It returns the inserted records.
func MergeInto(ctx context.Context, store Store, candidates []Candidate, now time.Time) ([]Record, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	merged, inserted := Merge(store.Load(ctx), candidates, now)
	if len(inserted) == 0 {
		return nil, nil
	}
	if err := store.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("entity: save merged records: %w", err)
	}
	return inserted, nil
}
