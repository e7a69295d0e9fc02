package display

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

// Registry is the part of the toast registry the viewport consumes.
type Registry interface {
	Current() []model.Toast
	Dismiss(id string)
	Subscribe() <-chan registry.ChangeEvent
	Unsubscribe(ch <-chan registry.ChangeEvent)
}

// ShowCallback is called once when a toast first becomes visible.
type ShowCallback func(t model.Toast)

// ExpireCallback is called with the toast ID just before a timer dismisses it.
type ExpireCallback func(id string)

// ToastState is the display state of a visible toast.
type ToastState struct {
	Toast     model.Toast
	ShownAt   time.Time
	ExpiresAt time.Time // Zero means never expires
	Paused    bool

	timer *time.Timer
	gen   uint64 // Invalidates stale timer callbacks
}

// Manager tracks which toasts are on screen and owns their auto-dismiss
// timers. Toasts beyond MaxVisible wait in registry order until space frees.
type Manager struct {
	reg    Registry
	logger *slog.Logger

	syncMu sync.Mutex // Serializes Sync so snapshots apply in order

	mu      sync.RWMutex
	cfg     *config.Config
	visible []*ToastState
	states  map[string]*ToastState
	hidden  int
	nextGen uint64

	onShow   ShowCallback
	onExpire ExpireCallback

	subscribers []chan struct{}
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewManager creates a display manager over reg.
func NewManager(reg Registry, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Manager{
		reg:    reg,
		cfg:    cfg,
		logger: logger,
		states: make(map[string]*ToastState),
	}
}

// SetShowCallback sets the hook invoked when a toast is first displayed.
func (m *Manager) SetShowCallback(cb ShowCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onShow = cb
}

// SetExpireCallback sets the hook invoked when a toast times out.
func (m *Manager) SetExpireCallback(cb ExpireCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = cb
}

// Start subscribes to the registry and keeps the viewport in sync until ctx
// is done or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	events := m.reg.Subscribe()
	m.mu.Unlock()

	m.Sync()

	go m.loop(ctx, events)
}

func (m *Manager) loop(ctx context.Context, events <-chan registry.ChangeEvent) {
	defer close(m.doneCh)
	defer m.reg.Unsubscribe(events)

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			m.Sync()
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		}
	}
}

// Stop ends the sync loop, cancels every pending timer and forgets the
// visible set. A later Start shows the registry afresh with new timers.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	<-m.doneCh

	m.mu.Lock()
	for _, state := range m.states {
		if state.timer != nil {
			state.timer.Stop()
		}
	}
	m.states = make(map[string]*ToastState)
	m.visible = nil
	m.hidden = 0
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.mu.Unlock()
}

// Sync re-reads the registry and updates the visible set. New toasts get
// their timer armed at this point; toasts that left the registry have
// their timer cancelled.
func (m *Manager) Sync() {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	current := m.reg.Current()

	m.mu.Lock()
	limit := len(current)
	if maxVisible := m.cfg.Viewport.MaxVisible; maxVisible > 0 && maxVisible < limit {
		limit = maxVisible
	}

	shown := make(map[string]bool, limit)
	visible := make([]*ToastState, 0, limit)
	var newlyShown []model.Toast

	now := time.Now()
	for _, t := range current[:limit] {
		shown[t.ID] = true
		state, exists := m.states[t.ID]
		if !exists {
			state = &ToastState{Toast: t, ShownAt: now}
			m.states[t.ID] = state
			m.armLocked(state, m.cfg.TimeoutFor(t.Variant))
			newlyShown = append(newlyShown, t)
		}
		visible = append(visible, state)
	}

	for id, state := range m.states {
		if shown[id] {
			continue
		}
		if state.timer != nil {
			state.timer.Stop()
		}
		delete(m.states, id)
	}

	m.visible = visible
	m.hidden = len(current) - limit
	onShow := m.onShow
	m.notifyLocked()
	m.mu.Unlock()

	for _, t := range newlyShown {
		m.logger.Debug("toast shown", "id", t.ID, "variant", t.Variant)
		if onShow != nil {
			onShow(t)
		}
	}
}

// armLocked starts the expiry timer for state. Caller must hold the lock.
func (m *Manager) armLocked(state *ToastState, timeout time.Duration) {
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	m.nextGen++
	state.gen = m.nextGen

	if timeout <= 0 {
		state.ExpiresAt = time.Time{}
		return
	}

	state.ExpiresAt = time.Now().Add(timeout)
	id, gen := state.Toast.ID, state.gen
	state.timer = time.AfterFunc(timeout, func() {
		m.expire(id, gen)
	})
}

// expire dismisses a toast whose timer fired, unless it was paused or
// re-armed in the meantime.
func (m *Manager) expire(id string, gen uint64) {
	m.mu.RLock()
	state, exists := m.states[id]
	shouldClose := exists && !state.Paused && state.gen == gen
	onExpire := m.onExpire
	m.mu.RUnlock()

	if !shouldClose {
		return
	}

	m.logger.Debug("toast expired", "id", id)
	if onExpire != nil {
		onExpire(id)
	}
	m.reg.Dismiss(id)
}

// Dismiss closes a toast on user request.
func (m *Manager) Dismiss(id string) {
	m.reg.Dismiss(id)
}

// DismissTop closes the most recently shown visible toast.
// Returns false if nothing is visible.
func (m *Manager) DismissTop() bool {
	m.mu.RLock()
	if len(m.visible) == 0 {
		m.mu.RUnlock()
		return false
	}
	id := m.visible[len(m.visible)-1].Toast.ID
	m.mu.RUnlock()

	m.reg.Dismiss(id)
	return true
}

// Pause stops the expiry timer of a visible toast.
func (m *Manager) Pause(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.states[id]
	if !exists || state.Paused {
		return false
	}
	state.Paused = true
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	m.notifyLocked()
	return true
}

// Resume restarts the full timeout of a paused toast.
func (m *Manager) Resume(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.states[id]
	if !exists || !state.Paused {
		return false
	}
	state.Paused = false
	m.armLocked(state, m.cfg.TimeoutFor(state.Toast.Variant))
	m.notifyLocked()
	return true
}

// Visible returns copies of the visible toast states in display order.
func (m *Manager) Visible() []ToastState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ToastState, len(m.visible))
	for i, state := range m.visible {
		result[i] = ToastState{
			Toast:     state.Toast,
			ShownAt:   state.ShownAt,
			ExpiresAt: state.ExpiresAt,
			Paused:    state.Paused,
		}
	}
	return result
}

// Hidden returns how many toasts are waiting for space.
func (m *Manager) Hidden() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hidden
}

// Position returns the configured viewport corner.
func (m *Manager) Position() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Viewport.Position
}

// Width returns the configured toast width.
func (m *Manager) Width() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Viewport.Width
}

// UpdateConfig swaps the configuration. New timeouts apply to toasts shown
// afterwards; a larger MaxVisible shows waiting toasts immediately.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	oldMaxVisible := m.cfg.Viewport.MaxVisible
	m.cfg = cfg
	m.mu.Unlock()

	m.logger.Debug("display config updated",
		"old_max_visible", oldMaxVisible,
		"new_max_visible", cfg.Viewport.MaxVisible,
	)

	m.Sync()
}

// Subscribe returns a channel signalled after every viewport change.
func (m *Manager) Subscribe() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{}, 1)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// notifyLocked signals subscribers without blocking. Caller must hold the lock.
func (m *Manager) notifyLocked() {
	for _, ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
