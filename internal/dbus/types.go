package dbus

import (
	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toasty/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined covers any other reason.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Notification holds the parameters of an incoming Notify call that the
// bridge uses.
type Notification struct {
	AppName    string
	ReplacesID uint32
	Summary    string
	Body       string
	Hints      map[string]dbus.Variant
}

// Urgency extracts the urgency hint. Returns model.UrgencyNormal if absent.
func (n *Notification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		switch u := v.Value().(type) {
		case byte:
			return int(u)
		case int32:
			return int(u)
		case uint32:
			return int(u)
		}
	}
	return model.UrgencyNormal
}

// PushData converts the notification into a registry push request.
// An empty summary falls back to the application name.
func (n *Notification) PushData() model.PushData {
	title := n.Summary
	if title == "" {
		title = n.AppName
	}
	return model.PushData{
		Title:       title,
		Description: n.Body,
		Variant:     model.VariantForUrgency(n.Urgency()),
	}
}

// ServerCapabilities lists the capabilities advertised by the bridge.
var ServerCapabilities = []string{
	"body",
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toasty",
		Vendor:      "toasty",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}
