// Package dbus implements the org.freedesktop.Notifications D-Bus interface
// as a bridge onto the toast registry. Notify pushes a toast,
// CloseNotification dismisses one, and NotificationClosed is emitted when a
// bridged toast leaves the registry for any reason.
package dbus
