package config

import (
	"path/filepath"
	"sync"
)

// SectionIDStores is the identifier for the stores section.
const SectionIDStores = "stores"

// Default file names inside the data directory.
const (
	DefaultStateFile    = ".sync-state.json"
	DefaultEntitiesFile = "relationships.json"
	DefaultAuditFile    = "audit_log.json"
	DefaultStatsFile    = "stats.json"
	DefaultLockFile     = ".harvest.lock"
)

// StoresSection locates the persistent stores. Relative file names are
// resolved against DataDir.
type StoresSection struct {
	DataDir      string
	StateFile    string
	EntitiesFile string
	AuditFile    string
	StatsFile    string
	mu           sync.RWMutex
}

// NewStoresSection creates a stores section with default file names.
func NewStoresSection() *StoresSection {
	return &StoresSection{
		StateFile:    DefaultStateFile,
		EntitiesFile: DefaultEntitiesFile,
		AuditFile:    DefaultAuditFile,
		StatsFile:    DefaultStatsFile,
	}
}

func (s *StoresSection) ID() string    { return SectionIDStores }
func (s *StoresSection) Title() string { return "Stores" }
func (s *StoresSection) Description() string {
	return "Where sync state, entity records, the audit log and usage stats are kept."
}

func (s *StoresSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"data_dir":      s.DataDir,
		"state_file":    s.StateFile,
		"entities_file": s.EntitiesFile,
		"audit_file":    s.AuditFile,
		"stats_file":    s.StatsFile,
	}
}

func (s *StoresSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, dst := range map[string]*string{
		"data_dir":      &s.DataDir,
		"state_file":    &s.StateFile,
		"entities_file": &s.EntitiesFile,
		"audit_file":    &s.AuditFile,
		"stats_file":    &s.StatsFile,
	} {
		if v, ok := data[key].(string); ok && v != "" {
			*dst = v
		}
	}
	return nil
}

func (s *StoresSection) Validate() error { return nil }

func (s *StoresSection) applyTo(out *Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setIfNotEmpty(&out.DataDir, s.DataDir)
	setIfNotEmpty(&out.StateFile, s.StateFile)
	setIfNotEmpty(&out.EntitiesFile, s.EntitiesFile)
	setIfNotEmpty(&out.AuditFile, s.AuditFile)
	setIfNotEmpty(&out.StatsFile, s.StatsFile)
}

// resolveIn joins name onto dir unless name is already absolute.
func resolveIn(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
