package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore_DefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewFileStore("")
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".harvest", "config.json"), store.Path())
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			store, err := NewFileStore(path)
			require.NoError(t, err)
			require.NoError(t, store.SetSection("llm", map[string]interface{}{
				"model":           "deepseek-chat",
				"timeout_seconds": 45,
			}))
			require.NoError(t, store.Save())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			reloaded, err := NewFileStore(path)
			require.NoError(t, err)
			data, err := reloaded.GetSection("llm")
			require.NoError(t, err)
			assert.Equal(t, "deepseek-chat", data["model"])
			timeout, ok := asInt(data["timeout_seconds"])
			require.True(t, ok)
			assert.Equal(t, 45, timeout)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
			}
		})
	}
}

func TestFileStore_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1.0"
sections:
  sources:
    chat_dir: /var/chat
    chat_patterns:
      - "history*.json"
  sync:
    unit_cost: 0.00002
`), 0600))

	manager, err := NewDefaultManager(mustStore(t, path))
	require.NoError(t, err)
	require.NoError(t, manager.LoadAll())

	s, err := Resolve(manager, func(string) string { return "" }, "/home/u")
	require.NoError(t, err)
	assert.Equal(t, "/var/chat", s.ChatDir)
	assert.Equal(t, []string{"history*.json"}, s.ChatPatterns)
	assert.InDelta(t, 0.00002, s.UnitCost, 1e-12)
}

func TestFileStore_MalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_CopiesOnAccess(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	in := map[string]interface{}{"model": "a"}
	require.NoError(t, store.SetSection("llm", in))
	in["model"] = "b"

	out, err := store.GetSection("llm")
	require.NoError(t, err)
	assert.Equal(t, "a", out["model"])

	out["model"] = "c"
	again, err := store.GetSection("llm")
	require.NoError(t, err)
	assert.Equal(t, "a", again["model"])
}

func mustStore(t *testing.T, path string) *FileStore {
	t.Helper()
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return store
}
