// Package bus holds the D-Bus connection helpers shared by the notification
// surface and the wake inhibitor.
package bus

import (
	"github.com/godbus/dbus/v5"
)

// Session and System are package vars so tests and headless builds can swap them.
var (
	Session = dbus.ConnectSessionBus
	System  = dbus.ConnectSystemBus
)

// NameHasOwner reports whether some process owns the well-known name on conn.
func NameHasOwner(conn *dbus.Conn, name string) bool {
	if conn == nil {
		return false
	}
	var owned bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&owned)
	return err == nil && owned
}
