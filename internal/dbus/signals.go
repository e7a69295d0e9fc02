package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// signalEmitter is satisfied by *dbus.Conn.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// emitNotificationClosed emits the NotificationClosed signal.
func (s *Server) emitNotificationClosed(emitter signalEmitter, id uint32, reason CloseReason) error {
	if emitter == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := emitter.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}
