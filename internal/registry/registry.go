// Package registry provides the in-memory toast registry.
package registry

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/model"
)

// ChangeType indicates the type of registry change.
type ChangeType int

const (
	// ChangeTypePush indicates a toast was appended.
	ChangeTypePush ChangeType = iota
	// ChangeTypeDismiss indicates a toast was removed.
	ChangeTypeDismiss
	// ChangeTypeClear indicates all toasts were removed.
	ChangeTypeClear
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypePush:
		return "push"
	case ChangeTypeDismiss:
		return "dismiss"
	case ChangeTypeClear:
		return "clear"
	default:
		return "unknown"
	}
}

// ChangeEvent signals registry content changes.
// Subscribers should re-read Current rather than track state from events.
type ChangeEvent struct {
	Type  ChangeType
	ID    string // Affected toast ID (empty for clear)
	Count int    // Number of toasts affected
}

// subscriberBuffer is the channel capacity for each subscriber.
const subscriberBuffer = 16

// Registry holds the ordered set of active toasts with thread-safe operations.
type Registry struct {
	mu     sync.RWMutex
	toasts []model.Toast
	index  map[string]int // toast ID -> slice index

	newID  IDGenerator
	logger *slog.Logger

	subscribers []chan ChangeEvent
	closed      bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator sets the identifier source for new toasts.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty Registry. Without options it uses ULID identifiers
// and the default slog logger.
func New(opts ...Option) *Registry {
	r := &Registry{
		toasts:      make([]model.Toast, 0),
		index:       make(map[string]int),
		newID:       ULIDGenerator,
		logger:      slog.Default(),
		subscribers: make([]chan ChangeEvent, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push appends a new toast built from data and returns it.
// The variant defaults to model.VariantDefault. Push always succeeds.
func (r *Registry) Push(data model.PushData) model.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.uniqueID()

	t := model.NewToast(id, data)
	r.index[id] = len(r.toasts)
	r.toasts = append(r.toasts, t)

	r.logger.Debug("toast pushed", "id", id, "variant", t.Variant, "count", len(r.toasts))

	r.notifyChange(ChangeEvent{
		Type:  ChangeTypePush,
		ID:    id,
		Count: 1,
	})

	return t
}

// Dismiss removes the toast with the given ID.
// Dismissing an unknown ID is a no-op and emits no event.
func (r *Registry) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, exists := r.index[id]
	if !exists {
		return
	}

	r.toasts = append(r.toasts[:idx], r.toasts[idx+1:]...)
	delete(r.index, id)
	for i := idx; i < len(r.toasts); i++ {
		r.index[r.toasts[i].ID] = i
	}

	r.logger.Debug("toast dismissed", "id", id, "count", len(r.toasts))

	r.notifyChange(ChangeEvent{
		Type:  ChangeTypeDismiss,
		ID:    id,
		Count: 1,
	})
}

// Clear removes every toast.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.toasts)
	if count == 0 {
		return
	}

	r.toasts = make([]model.Toast, 0)
	r.index = make(map[string]int)

	r.notifyChange(ChangeEvent{
		Type:  ChangeTypeClear,
		Count: count,
	})
}

// Current returns a copy of the active toasts in display order.
func (r *Registry) Current() []model.Toast {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.Toast, len(r.toasts))
	copy(result, r.toasts)
	return result
}

// Get returns the toast with the given ID.
func (r *Registry) Get(id string) (model.Toast, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, exists := r.index[id]
	if !exists {
		return model.Toast{}, false
	}
	return r.toasts[idx], true
}

// Count returns the number of active toasts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.toasts)
}

// Subscribe returns a channel that receives change events.
// After Close, the returned channel is already closed.
func (r *Registry) Subscribe() <-chan ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan ChangeEvent, subscriberBuffer)
	if r.closed {
		close(ch)
		return ch
	}
	r.subscribers = append(r.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (r *Registry) Unsubscribe(ch <-chan ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subscribers {
		if sub == ch {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes all subscriber channels. The registry stays usable but no
// further events are delivered.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	for _, ch := range r.subscribers {
		close(ch)
	}
	r.subscribers = nil
	return nil
}

// maxIDAttempts bounds retries against a generator that keeps colliding.
const maxIDAttempts = 3

// uniqueID returns an ID not present in the registry. Must hold r.mu.
func (r *Registry) uniqueID() string {
	for range maxIDAttempts {
		id := r.newID()
		if _, exists := r.index[id]; !exists && id != "" {
			return id
		}
		r.logger.Warn("id generator returned an unusable id, retrying", "id", id)
	}

	// Fall back to ULIDs, which are monotonic within this process.
	for {
		id := ULIDGenerator()
		if _, exists := r.index[id]; !exists {
			return id
		}
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
// A full channel already holds a pending event, so the subscriber will
// still re-read the latest state.
func (r *Registry) notifyChange(event ChangeEvent) {
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
