package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/display"
	"github.com/jmylchreest/toasty/internal/registry"
)

// session wires one registry to its viewport, sounds and config reloads.
type session struct {
	logger *slog.Logger

	reg      *registry.Registry
	viewport *display.Manager
	player   *audio.Player
	sounds   *audio.Manager
	watcher  *config.Watcher
}

func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	gen, err := registry.NewIDGenerator(cfg.IDs.Generator)
	if err != nil {
		return nil, err
	}

	s := &session{logger: logger}
	s.reg = registry.New(registry.WithIDGenerator(gen), registry.WithLogger(logger))
	s.viewport = display.NewManager(s.reg, cfg, logger)
	s.player = audio.NewPlayer(logger)
	s.sounds = audio.NewManager(cfg, s.player, logger)
	s.viewport.SetShowCallback(s.sounds.OnShow)
	return s, nil
}

// start runs the viewport and config watcher and returns ctx with the
// registry bound to it.
func (s *session) start(ctx context.Context, path string) context.Context {
	s.viewport.Start(ctx)

	watcher, err := config.NewWatcher(path, s.applyConfig, s.logger)
	if err != nil {
		s.logger.Warn("config hot reload disabled", "error", err)
	} else if err := watcher.Start(); err != nil {
		// No config directory yet is the normal first-run state.
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("config hot reload disabled", "error", err)
		} else {
			s.logger.Warn("config hot reload disabled", "error", err)
		}
		_ = watcher.Stop()
	} else {
		s.watcher = watcher
	}

	return registry.NewContext(ctx, s.reg)
}

// applyConfig pushes a reloaded configuration to every component.
// The ID generator is fixed for the lifetime of the registry.
func (s *session) applyConfig(cfg *config.Config) {
	s.viewport.UpdateConfig(cfg)
	s.sounds.UpdateConfig(cfg)
	s.logger.Debug("reloaded config applied",
		"max_visible", cfg.Viewport.MaxVisible,
		"sound", cfg.Sound.Enabled,
	)
}

func (s *session) close() {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("failed to stop config watcher", "error", err)
		}
	}
	s.viewport.Stop()
	if err := s.reg.Close(); err != nil {
		s.logger.Warn("failed to close registry", "error", err)
	}
	s.player.Close()
}

// openSession builds a session from the loaded configuration.
func openSession() (*session, error) {
	s, err := newSession(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}
