// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/model"
)

// Default configuration values.
const (
	DefaultPosition      = PositionBottomRight
	DefaultMaxVisible    = 3
	DefaultWidth         = 42
	DefaultTimeout       = Duration(5 * time.Second)
	DefaultDangerTimeout = Duration(10 * time.Second)
	DefaultIDGenerator   = "ulid"
	DefaultOutputFormat  = "plain"
	DefaultVolume        = 80
)

// Viewport positions.
const (
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
)

// ValidPositions returns all accepted viewport positions.
func ValidPositions() []string {
	return []string{PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight}
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the toasty configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	IDs      IDConfig       `toml:"ids"`
	Output   OutputConfig   `toml:"output"`
	Sound    SoundConfig    `toml:"sound"`
}

// ViewportConfig controls where and how many toasts are shown.
type ViewportConfig struct {
	Position   string `toml:"position"`    // top-left, top-right, bottom-left, bottom-right
	MaxVisible int    `toml:"max_visible"` // 0 = unlimited
	Width      int    `toml:"width"`       // Toast width in columns
}

// TimeoutConfig holds auto-dismiss durations per variant.
type TimeoutConfig struct {
	Default Duration `toml:"default"`
	Danger  Duration `toml:"danger"`
}

// IDConfig selects the toast identifier generator.
type IDConfig struct {
	Generator string `toml:"generator"` // ulid, uuid
}

// OutputConfig holds non-interactive output settings.
type OutputConfig struct {
	Format   string `toml:"format"`   // plain, json, yaml
	Template string `toml:"template"` // text/template for plain output
}

// SoundConfig holds per-variant sound settings.
type SoundConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Default string `toml:"default"`
	Danger  string `toml:"danger"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Position:   DefaultPosition,
			MaxVisible: DefaultMaxVisible,
			Width:      DefaultWidth,
		},
		Timeouts: TimeoutConfig{
			Default: DefaultTimeout,
			Danger:  DefaultDangerTimeout,
		},
		IDs: IDConfig{
			Generator: DefaultIDGenerator,
		},
		Output: OutputConfig{
			Format:   DefaultOutputFormat,
			Template: output.DefaultPlainTemplate,
		},
		Sound: SoundConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
	}
}

// TimeoutFor returns the auto-dismiss duration for a variant.
// Zero means the toast never expires.
func (c *Config) TimeoutFor(v model.Variant) time.Duration {
	if v == model.VariantDanger {
		return c.Timeouts.Danger.Duration()
	}
	return c.Timeouts.Default.Duration()
}

// SoundFor returns the sound file configured for a variant.
func (c *Config) SoundFor(v model.Variant) string {
	if v == model.VariantDanger {
		return c.Sound.Danger
	}
	return c.Sound.Default
}

// Validate checks field values and returns the first problem found.
func (c *Config) Validate() error {
	validPosition := false
	for _, p := range ValidPositions() {
		if c.Viewport.Position == p {
			validPosition = true
			break
		}
	}
	if !validPosition {
		return fmt.Errorf("%w: viewport.position %q", ErrInvalidConfig, c.Viewport.Position)
	}
	if c.Viewport.MaxVisible < 0 {
		return fmt.Errorf("%w: viewport.max_visible must be >= 0", ErrInvalidConfig)
	}
	if c.Viewport.Width < 10 {
		return fmt.Errorf("%w: viewport.width must be >= 10", ErrInvalidConfig)
	}
	if c.Timeouts.Default < 0 || c.Timeouts.Danger < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	switch c.IDs.Generator {
	case "ulid", "uuid":
	default:
		return fmt.Errorf("%w: ids.generator %q", ErrInvalidConfig, c.IDs.Generator)
	}
	switch c.Output.Format {
	case "plain", "json", "yaml", "ids", "dmenu", "table":
	default:
		return fmt.Errorf("%w: output.format %q", ErrInvalidConfig, c.Output.Format)
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 100 {
		return fmt.Errorf("%w: sound.volume must be 0-100", ErrInvalidConfig)
	}
	return nil
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toasty", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
