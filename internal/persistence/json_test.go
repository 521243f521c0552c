package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "index.json")

	require.NoError(t, SaveJSON(path, sample{Name: "main", Items: []string{"a", "b"}}))

	var loaded sample
	require.NoError(t, LoadJSON(path, &loaded))
	assert.Equal(t, "main", loaded.Name)
	assert.Equal(t, []string{"a", "b"}, loaded.Items)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should not be left behind")
}

func TestSaveJSONReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	require.NoError(t, SaveJSON(path, sample{Name: "first"}))
	require.NoError(t, SaveJSON(path, sample{Name: "second"}))

	var loaded sample
	require.NoError(t, LoadJSON(path, &loaded))
	assert.Equal(t, "second", loaded.Name)
}

func TestLoadJSONMissingFile(t *testing.T) {
	var loaded sample
	err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"), &loaded)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	var loaded sample
	err := LoadJSON(path, &loaded)
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveJSONUnencodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	err := SaveJSON(path, map[string]interface{}{"ch": make(chan int)})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
