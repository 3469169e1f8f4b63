package config

import (
	"fmt"
	"os"
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over store with the llm, stores,
// sources and sync sections registered.
func NewDefaultManager(store Store) (*Manager, error) {
	manager := NewManager(store)

	for _, section := range []Section{
		NewLLMSection(),
		NewStoresSection(),
		NewSourcesSection(),
		NewSyncSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager, err := NewDefaultManager(store)
	if err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// InitFile writes a config file holding every section at its defaults and
// returns its path. An empty path selects DefaultPath. An existing file is
// never overwritten.
func InitFile(path string) (string, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return "", err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return path, fmt.Errorf("failed to check config file: %w", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		return path, err
	}
	manager, err := NewDefaultManager(store)
	if err != nil {
		return path, err
	}
	if err := manager.SaveAll(); err != nil {
		return path, err
	}
	return path, nil
}
