// Package audit keeps the bounded, newest-first log of sync cycle outcomes.
package audit

import (
	"time"

	"github.com/entrhq/harvest/pkg/storage"
	"github.com/google/uuid"
)

// MaxRecords bounds the log. Appending beyond it drops the oldest records.
const MaxRecords = 100

const (
	// ActionSyncActivity is the action recorded for every sync cycle.
	ActionSyncActivity = "sync_activity"

	// DefaultActor and DefaultActorRole identify the sync agent.
	DefaultActor     = "Bubba"
	DefaultActorRole = "agent"
)

// Record is one audit entry.
type Record struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Actor     string            `json:"actor"`
	ActorRole string            `json:"actor_role"`
	Details   string            `json:"details"`
	Metadata  map[string]any    `json:"metadata"`
	CreatedAt storage.Timestamp `json:"created_at"`
}

// NewRecord builds a sync_activity record with a fresh id.
func NewRecord(details string, metadata map[string]any, now time.Time) Record {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Record{
		ID:        uuid.NewString(),
		Action:    ActionSyncActivity,
		Actor:     DefaultActor,
		ActorRole: DefaultActorRole,
		Details:   details,
		Metadata:  metadata,
		CreatedAt: storage.NewTimestamp(now),
	}
}

// Append returns a new log with rec at the head, truncated to MaxRecords.
func Append(records []Record, rec Record) []Record {
	n := len(records) + 1
	if n > MaxRecords {
		n = MaxRecords
	}
	out := make([]Record, 0, n)
	out = append(out, rec)
	out = append(out, records[:n-1]...)
	return out
}
