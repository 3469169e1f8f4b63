package state

import (
	"context"
	"errors"
	"log/slog"

	"github.com/entrhq/harvest/pkg/storage"
)

// Store is the read/write interface for persisted sync state.
type Store interface {
	// Load never fails: a missing or unreadable state is the zero State.
	Load(ctx context.Context) State
	Save(ctx context.Context, s State) error
}

// FileStore keeps the state in a single JSON file.
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

// Load reads the state file, falling back to the zero State.
func (fs *FileStore) Load(_ context.Context) State {
	var s State
	err := storage.ReadJSON(fs.path, &s)
	if errors.Is(err, storage.ErrNotExist) {
		return State{}
	}
	if err != nil {
		slog.Debug("state: ignoring unreadable state file", "path", fs.path, "err", err)
		return State{}
	}
	if s.LastSync != nil && s.LastSync.IsZero() {
		s.LastSync = nil
	}
	if len(s.SeenFingerprints) > MaxFingerprints {
		s.SeenFingerprints = s.SeenFingerprints[len(s.SeenFingerprints)-MaxFingerprints:]
	}
	return s
}

// Save atomically overwrites the state file.
func (fs *FileStore) Save(_ context.Context, s State) error {
	if s.SeenFingerprints == nil {
		s.SeenFingerprints = []string{}
	}
	return storage.WriteJSON(fs.path, s)
}
