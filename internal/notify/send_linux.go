//go:build linux

package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

var (
	replaceMu sync.Mutex
	replaceID uint32
)

// platformSend uses the freedesktop notification service. Each notification
// replaces the previous one so rapid copies do not stack up.
func platformSend(m message) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	replaceMu.Lock()
	defer replaceMu.Unlock()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		m.title, replaceID, m.icon, m.title, m.body, []string{}, map[string]dbus.Variant{}, int32(5000))
	if call.Err != nil {
		return call.Err
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		replaceID = id
	}
	return nil
}
