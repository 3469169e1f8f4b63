package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestReadJSON_Missing(t *testing.T) {
	var s sample
	err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &s)
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestReadJSON_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var s sample
	err := ReadJSON(path, &s)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotExist))
	assert.Contains(t, err.Error(), "decode")
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")

	require.NoError(t, WriteJSON(path, sample{Name: "alice", Count: 3}))

	var got sample
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, sample{Name: "alice", Count: 3}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteJSON_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, WriteJSON(path, sample{Name: "first"}))
	require.NoError(t, WriteJSON(path, sample{Name: "second"}))

	var got sample
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, "second", got.Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	err := WriteJSON(path, map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
