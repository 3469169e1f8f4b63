package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/harvest/pkg/console"
)

// SectionIDSync is the identifier for the sync section.
const SectionIDSync = "sync"

// SyncSection holds cycle behaviour settings.
type SyncSection struct {
	UnitCost    float64 // estimated cost per token; 0 means the default
	MetricsFile string  // optional node exporter textfile
	Verbosity   string
	mu          sync.RWMutex
}

// NewSyncSection creates a sync section with default settings.
func NewSyncSection() *SyncSection {
	return &SyncSection{Verbosity: "normal"}
}

func (s *SyncSection) ID() string    { return SectionIDSync }
func (s *SyncSection) Title() string { return "Sync" }
func (s *SyncSection) Description() string {
	return "Cost estimate, telemetry output and console verbosity."
}

func (s *SyncSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"unit_cost":    s.UnitCost,
		"metrics_file": s.MetricsFile,
		"verbosity":    s.Verbosity,
	}
}

func (s *SyncSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := asFloat(data["unit_cost"]); ok {
		s.UnitCost = v
	}
	if v, ok := data["metrics_file"].(string); ok {
		s.MetricsFile = v
	}
	if v, ok := data["verbosity"].(string); ok && v != "" {
		s.Verbosity = v
	}
	return nil
}

func (s *SyncSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := requireNonNegative("unit_cost", s.UnitCost); err != nil {
		return err
	}
	if _, ok := console.ParseLevel(s.Verbosity); !ok {
		return fmt.Errorf("unknown verbosity %q", s.Verbosity)
	}
	return nil
}

func (s *SyncSection) applyTo(out *Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.UnitCost > 0 {
		out.UnitCost = s.UnitCost
	}
	setIfNotEmpty(&out.MetricsFile, s.MetricsFile)
	setIfNotEmpty(&out.Verbosity, s.Verbosity)
}
