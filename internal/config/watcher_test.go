package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewport]\nmax_visible = 2\n"), 0644))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[viewport]\nmax_visible = 7\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Viewport.MaxVisible)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcher_IgnoresInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[viewport]\nposition = \"nowhere\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected reload: %+v", cfg.Viewport)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), nil, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "config.toml"), nil, nil)
	require.NoError(t, err)

	err = w.Start()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoError(t, w.Stop())
}
