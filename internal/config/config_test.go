package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, PositionBottomRight, cfg.Viewport.Position)
	assert.Equal(t, 3, cfg.Viewport.MaxVisible)
	assert.Equal(t, 42, cfg.Viewport.Width)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Default.Duration())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Danger.Duration())
	assert.Equal(t, "ulid", cfg.IDs.Generator)
	assert.Equal(t, "plain", cfg.Output.Format)
	assert.NotEmpty(t, cfg.Output.Template)
	assert.False(t, cfg.Sound.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Viewport, cfg.Viewport)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[viewport]
position = "top-left"
max_visible = 5
width = 60

[timeouts]
default = "3s"
danger = "0"

[ids]
generator = "uuid"

[output]
format = "json"

[sound]
enabled = true
volume = 40
danger = "~/sounds/alert.ogg"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, PositionTopLeft, cfg.Viewport.Position)
	assert.Equal(t, 5, cfg.Viewport.MaxVisible)
	assert.Equal(t, 60, cfg.Viewport.Width)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Default.Duration())
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Danger.Duration())
	assert.Equal(t, "uuid", cfg.IDs.Generator)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Sound.Enabled)
	assert.Equal(t, 40, cfg.Sound.Volume)
	assert.Equal(t, "~/sounds/alert.ogg", cfg.SoundFor(model.VariantDanger))
	assert.Empty(t, cfg.SoundFor(model.VariantDefault))

	// Unset values keep their defaults
	assert.Equal(t, output.DefaultPlainTemplate, cfg.Output.Template)
}

func TestLoadConfig_MillisecondDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\ndefault = \"1500\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeouts.Default.Duration())
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewport\nbroken"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewport]\nposition = \"center\"\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad position", func(c *Config) { c.Viewport.Position = "middle" }},
		{"negative max visible", func(c *Config) { c.Viewport.MaxVisible = -1 }},
		{"narrow width", func(c *Config) { c.Viewport.Width = 5 }},
		{"negative timeout", func(c *Config) { c.Timeouts.Danger = Duration(-time.Second) }},
		{"bad generator", func(c *Config) { c.IDs.Generator = "snowflake" }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad volume", func(c *Config) { c.Sound.Volume = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_TimeoutFor(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.TimeoutFor(model.VariantDefault))
	assert.Equal(t, 10*time.Second, cfg.TimeoutFor(model.VariantDanger))
}

func TestConfig_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Viewport.Position = PositionTopRight
	cfg.Timeouts.Default = Duration(2 * time.Second)

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, PositionTopRight, loaded.Viewport.Position)
	assert.Equal(t, 2*time.Second, loaded.Timeouts.Default.Duration())
}

func TestConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/toasty/config.toml", ConfigPath())
}

func TestConfig_ValidateFormats(t *testing.T) {
	for _, format := range []string{"plain", "json", "yaml", "ids", "dmenu", "table"} {
		t.Run(format, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Output.Format = format
			assert.NoError(t, cfg.Validate())
		})
	}
}
