// Package stats accumulates usage counters across sync cycles and derives a
// running cost estimate from them.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/entrhq/harvest/pkg/storage"
)

// DefaultUnitCost is the estimated cost per token (about $30 per million).
const DefaultUnitCost = 0.00003

// Snapshot is the persisted running ledger. Counters only grow.
type Snapshot struct {
	ActiveAgents  int               `json:"activeAgents"`
	TotalMessages int64             `json:"totalMessages"`
	TokensUsed    int64             `json:"tokensUsed"`
	MonthlyCost   float64           `json:"monthlyCost"`
	LastUpdated   storage.Timestamp `json:"lastUpdated"`
}

// Delta is what one cycle contributes.
type Delta struct {
	MessagesProcessed int64
	TokensEstimate    int64
}

// Apply adds delta to s. Negative delta fields count as zero.
func Apply(s Snapshot, d Delta, now time.Time, unitCost float64) Snapshot {
	s.TotalMessages += max(d.MessagesProcessed, 0)
	s.TokensUsed += max(d.TokensEstimate, 0)
	s.MonthlyCost = float64(s.TokensUsed) * unitCost
	s.ActiveAgents = 1
	s.LastUpdated = storage.NewTimestamp(now)
	return s
}

// Store is the read/write interface for the persisted snapshot.
type Store interface {
	// Load returns the zero Snapshot when nothing usable is stored.
	Load(ctx context.Context) Snapshot
	Save(ctx context.Context, s Snapshot) error
}

// FileStore keeps the snapshot in a single JSON file.
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

// Load reads the snapshot, falling back to zero counters.
func (fs *FileStore) Load(_ context.Context) Snapshot {
	var s Snapshot
	err := storage.ReadJSON(fs.path, &s)
	if errors.Is(err, storage.ErrNotExist) {
		return Snapshot{}
	}
	if err != nil {
		slog.Debug("stats: ignoring unreadable stats file", "path", fs.path, "err", err)
		return Snapshot{}
	}
	return s
}

// Save atomically overwrites the snapshot.
func (fs *FileStore) Save(_ context.Context, s Snapshot) error {
	return storage.WriteJSON(fs.path, s)
}

// Aggregator applies deltas to a Store.
type Aggregator struct {
	store    Store
	unitCost float64
	now      func() time.Time
}

// NewAggregator creates an Aggregator. A non-positive unitCost selects
// DefaultUnitCost.
func NewAggregator(store Store, unitCost float64) *Aggregator {
	if unitCost <= 0 {
		unitCost = DefaultUnitCost
	}
	return &Aggregator{store: store, unitCost: unitCost, now: time.Now}
}

// Update loads the snapshot, applies d and persists the result. Calling it
// twice with the same delta counts twice.
func (a *Aggregator) Update(ctx context.Context, d Delta) (Snapshot, error) {
	s := Apply(a.store.Load(ctx), d, a.now(), a.unitCost)
	if err := a.store.Save(ctx, s); err != nil {
		return s, fmt.Errorf("stats: save snapshot: %w", err)
	}
	return s, nil
}
