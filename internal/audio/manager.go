package audio

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/model"
)

// SoundPlayer plays a sound file.
type SoundPlayer interface {
	Play(path string) error
	SetVolume(percent int)
}

// Manager chooses the sound for each shown toast from the configuration.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player SoundPlayer
	cfg    *config.Config
}

// NewManager creates a sound manager for cfg.
func NewManager(cfg *config.Config, player SoundPlayer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{logger: logger, player: player}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig applies new sound settings.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.player.SetVolume(cfg.Sound.Volume)
}

// OnShow plays the variant's sound. It matches display.ShowCallback.
func (m *Manager) OnShow(t model.Toast) {
	m.mu.RLock()
	enabled := m.cfg.Sound.Enabled
	path := m.cfg.SoundFor(t.Variant)
	m.mu.RUnlock()

	if !enabled || path == "" {
		return
	}

	if err := m.player.Play(path); err != nil {
		m.logger.Warn("failed to play sound", "path", path, "variant", t.Variant, "error", err)
	}
}
