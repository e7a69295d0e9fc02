package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/registry"
)

func warnLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestSession_MissingConfigDirIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	s, err := newSession(config.DefaultConfig(), warnLogger(&buf))
	require.NoError(t, err)

	ctx := s.start(context.Background(), filepath.Join(t.TempDir(), "missing", "config.toml"))
	defer s.close()

	reg, err := registry.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, s.reg, reg)
	assert.Nil(t, s.watcher)
	assert.Empty(t, buf.String())
}

func TestSession_WatchesExistingConfigDir(t *testing.T) {
	var buf bytes.Buffer
	s, err := newSession(config.DefaultConfig(), warnLogger(&buf))
	require.NoError(t, err)

	s.start(context.Background(), filepath.Join(t.TempDir(), "config.toml"))
	defer s.close()

	assert.NotNil(t, s.watcher)
	assert.Empty(t, buf.String())
}

func TestNewSession_UnknownGenerator(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IDs.Generator = "snowflake"

	_, err := newSession(cfg, slog.Default())
	assert.Error(t, err)
}
