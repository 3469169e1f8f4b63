package config

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// mockSection is a test implementation of the Section interface
type mockSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
}

func (m *mockSection) ID() string                                { return m.id }
func (m *mockSection) Title() string                             { return m.id }
func (m *mockSection) Description() string                       { return "" }
func (m *mockSection) Data() map[string]interface{}              { return m.data }
func (m *mockSection) SetData(data map[string]interface{}) error { m.data = data; return nil }
func (m *mockSection) Validate() error                           { return m.validateErr }

// mockStore is an in-memory Store
type mockStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saves    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]interface{})}
}

func (m *mockStore) Load() error { return m.loadErr }

func (m *mockStore) Save() error {
	m.saves++
	return m.saveErr
}

func (m *mockStore) GetSection(sectionID string) (map[string]interface{}, error) {
	if data, exists := m.sections[sectionID]; exists {
		return data, nil
	}
	return make(map[string]interface{}), nil
}

func (m *mockStore) SetSection(sectionID string, data map[string]interface{}) error {
	m.sections[sectionID] = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	manager := NewManager(newMockStore())

	for _, id := range []string{"llm", "stores", "sources"} {
		if err := manager.RegisterSection(&mockSection{id: id}); err != nil {
			t.Fatalf("RegisterSection(%s) failed: %v", id, err)
		}
	}

	if err := manager.RegisterSection(&mockSection{id: "llm"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}

	sections := manager.GetSections()
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}
	if sections[0].ID() != "llm" || sections[1].ID() != "stores" || sections[2].ID() != "sources" {
		t.Error("Sections not in registration order")
	}

	if _, ok := manager.GetSection("sync"); ok {
		t.Error("Should return false for non-existent section")
	}
}

func TestManager_LoadAll(t *testing.T) {
	store := newMockStore()
	store.sections["stores"] = map[string]interface{}{"data_dir": "/srv/harvest"}

	manager := NewManager(store)
	section := &mockSection{id: "stores"}
	manager.RegisterSection(section)

	if err := manager.LoadAll(); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if section.data["data_dir"] != "/srv/harvest" {
		t.Error("Section data not loaded correctly")
	}

	store.loadErr = fmt.Errorf("load error")
	if err := manager.LoadAll(); err == nil {
		t.Error("Expected error from store")
	}
}

func TestManager_LoadAllValidates(t *testing.T) {
	store := newMockStore()
	store.sections["sync"] = map[string]interface{}{"verbosity": "shouty"}

	manager := NewManager(store)
	good := &mockSection{id: "llm"}
	bad := &mockSection{id: "sync", validateErr: fmt.Errorf("bad verbosity")}
	worse := &mockSection{id: "stores", validateErr: fmt.Errorf("bad data_dir")}
	manager.RegisterSection(good)
	manager.RegisterSection(bad)
	manager.RegisterSection(worse)

	err := manager.LoadAll()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"invalid section sync: bad verbosity", "invalid section stores: bad data_dir"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	}
	if bad.data["verbosity"] != "shouty" {
		t.Error("Section data should still be applied before validation")
	}
}

func TestManager_SaveAll(t *testing.T) {
	t.Run("saves all sections", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "sync", data: map[string]interface{}{"verbosity": "quiet"}})

		if err := manager.SaveAll(); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}
		if store.sections["sync"]["verbosity"] != "quiet" {
			t.Error("Section data not saved correctly")
		}
		if store.saves != 1 {
			t.Errorf("Expected one store save, got %d", store.saves)
		}
	})

	t.Run("invalid section blocks save", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "sync", validateErr: fmt.Errorf("bad")})

		if err := manager.SaveAll(); err == nil {
			t.Error("Expected validation error")
		}
		if store.saves != 0 {
			t.Error("Store should not be saved when validation fails")
		}
	})

	t.Run("store error surfaces", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = fmt.Errorf("save error")
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "sync", data: map[string]interface{}{}})

		if err := manager.SaveAll(); err == nil {
			t.Error("Expected error from store")
		}
	})
}

func TestManager_ConcurrentRegistration(t *testing.T) {
	manager := NewManager(newMockStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			manager.RegisterSection(&mockSection{id: fmt.Sprintf("section%d", i)})
			manager.GetSections()
		}(i)
	}
	wg.Wait()

	if got := len(manager.GetSections()); got != 10 {
		t.Errorf("Expected 10 sections, got %d", got)
	}
}
