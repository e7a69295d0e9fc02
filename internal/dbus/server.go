package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// Registry is the part of the toast registry the bridge drives.
type Registry interface {
	Push(data model.PushData) model.Toast
	Dismiss(id string)
	Get(id string) (model.Toast, bool)
	Subscribe() <-chan registry.ChangeEvent
	Unsubscribe(ch <-chan registry.ChangeEvent)
}

// Server exports the notification interface and turns calls into registry
// operations. D-Bus clients see uint32 IDs; the registry sees toast IDs.
type Server struct {
	conn    *dbus.Conn
	emitter signalEmitter
	logger  *slog.Logger
	reg     Registry

	nextID atomic.Uint32

	mu         sync.Mutex
	byDBusID   map[uint32]string
	byToastID  map[string]uint32
	reasons    map[string]CloseReason // Pending close reasons by toast ID
	serverInfo ServerInfo
	running    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewServer creates a bridge over reg.
func NewServer(reg Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		reg:        reg,
		byDBusID:   make(map[uint32]string),
		byToastID:  make(map[string]uint32),
		reasons:    make(map[string]CloseReason),
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start connects to the session bus, exports the interface, claims the bus
// name and begins forwarding registry removals as NotificationClosed signals.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.emitter = conn
	s.mu.Unlock()

	s.startWatch(ctx)

	s.logger.Info("D-Bus notification bridge started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// startWatch reconciles bridged IDs on every registry change.
func (s *Server) startWatch(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	events := s.reg.Subscribe()
	go func() {
		defer close(doneCh)
		defer s.reg.Unsubscribe(events)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
				s.Reconcile()
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop releases the bus name and ends the watch loop.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	conn := s.conn
	s.mu.Unlock()

	<-doneCh

	if conn != nil {
		if _, err := conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared, so it stays open.
	}

	s.logger.Info("D-Bus notification bridge stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.Lock()
	info := s.serverInfo
	s.mu.Unlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify pushes a toast for an incoming notification.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &Notification{
		AppName:    appName,
		ReplacesID: replacesID,
		Summary:    summary,
		Body:       body,
		Hints:      hints,
	}
	return s.notify(n), nil
}

func (s *Server) notify(n *Notification) uint32 {
	s.mu.Lock()
	id := n.ReplacesID
	oldToastID, replacing := s.byDBusID[id]
	if replacing {
		// Replacement is silent: forget the old toast before removing it.
		delete(s.byToastID, oldToastID)
		delete(s.reasons, oldToastID)
	} else {
		id = s.nextID.Add(1)
	}
	s.mu.Unlock()

	if replacing {
		s.reg.Dismiss(oldToastID)
	}

	toast := s.reg.Push(n.PushData())

	s.mu.Lock()
	s.byDBusID[id] = toast.ID
	s.byToastID[toast.ID] = id
	s.mu.Unlock()

	s.logger.Debug("Notify bridged",
		"app_name", n.AppName,
		"replaces_id", n.ReplacesID,
		"dbus_id", id,
		"toast_id", toast.ID,
		"variant", toast.Variant,
	)
	return id
}

// CloseNotification dismisses the toast behind a D-Bus ID.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	toastID, exists := s.toastID(id)
	if !exists {
		return nil
	}

	s.mu.Lock()
	// A concurrent replace may have dropped the mapping already.
	_, bridged := s.byToastID[toastID]
	if bridged {
		s.reasons[toastID] = CloseReasonClosed
	}
	s.mu.Unlock()

	if bridged {
		s.reg.Dismiss(toastID)
		s.Reconcile()
	}
	return nil
}

// MarkExpired records that a toast is being removed by its timeout.
// It matches the display manager's expire callback.
func (s *Server) MarkExpired(toastID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, bridged := s.byToastID[toastID]; bridged {
		s.reasons[toastID] = CloseReasonExpired
	}
}

// Reconcile emits NotificationClosed for every bridged toast that has left
// the registry and forgets its ID. Removals without a recorded reason are
// reported as dismissed.
func (s *Server) Reconcile() {
	type closed struct {
		id     uint32
		reason CloseReason
	}

	s.mu.Lock()
	var gone []closed
	for toastID, dbusID := range s.byToastID {
		if _, ok := s.reg.Get(toastID); ok {
			continue
		}
		reason, ok := s.reasons[toastID]
		if !ok {
			reason = CloseReasonDismissed
		}
		gone = append(gone, closed{id: dbusID, reason: reason})
		delete(s.byToastID, toastID)
		delete(s.byDBusID, dbusID)
		delete(s.reasons, toastID)
	}
	emitter := s.emitter
	s.mu.Unlock()

	if emitter == nil {
		return
	}
	for _, c := range gone {
		if err := s.emitNotificationClosed(emitter, c.id, c.reason); err != nil {
			s.logger.Warn("signal not delivered", "id", c.id, "error", err)
		}
	}
}

// toastID returns the toast behind a D-Bus ID.
func (s *Server) toastID(id uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	toastID, ok := s.byDBusID[id]
	return toastID, ok
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
	}
}
