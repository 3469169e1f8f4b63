// Package state tracks what the sync engine has already processed: a
// bounded window of content fingerprints and the time of the last cycle.
package state

import (
	"time"

	"github.com/entrhq/harvest/pkg/storage"
)

// MaxFingerprints bounds the dedup window. Content older than the window
// may be processed again.
const MaxFingerprints = 50

// State is the persisted sync state.
type State struct {
	LastSync         *storage.Timestamp `json:"last_sync"`
	SeenFingerprints []string           `json:"processed_hashes"`
}

// Contains reports whether fp is inside the dedup window.
func (s *State) Contains(fp string) bool {
	for _, seen := range s.SeenFingerprints {
		if seen == fp {
			return true
		}
	}
	return false
}

// Record appends fp and evicts the oldest fingerprints beyond MaxFingerprints.
func (s *State) Record(fp string) {
	s.SeenFingerprints = append(s.SeenFingerprints, fp)
	if over := len(s.SeenFingerprints) - MaxFingerprints; over > 0 {
		kept := make([]string, MaxFingerprints)
		copy(kept, s.SeenFingerprints[over:])
		s.SeenFingerprints = kept
	}
}

// Touch sets LastSync to now.
func (s *State) Touch(now time.Time) {
	t := storage.NewTimestamp(now)
	s.LastSync = &t
}
