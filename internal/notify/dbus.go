package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/warpalarm/internal/bus"
	"github.com/warpdl/warpalarm/pkg/logger"
)

const (
	notifyName  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface = "org.freedesktop.Notifications"

	signalAction = notifyIface + ".ActionInvoked"
	signalClosed = notifyIface + ".NotificationClosed"

	urgencyNormal   byte = 1
	urgencyCritical byte = 2

	promptAllow = "allow"
	promptDeny  = "deny"
)

// notificationServer is the slice of org.freedesktop.Notifications we call.
type notificationServer interface {
	Notify(appName string, replacesID uint32, icon, summary, body string, actions []string, hints map[string]dbus.Variant, timeout int32) (uint32, error)
	CloseNotification(id uint32) error
}

type busServer struct {
	obj dbus.BusObject
}

func (b busServer) Notify(appName string, replacesID uint32, icon, summary, body string, actions []string, hints map[string]dbus.Variant, timeout int32) (uint32, error) {
	var id uint32
	err := b.obj.Call(notifyIface+".Notify", 0, appName, replacesID, icon, summary, body, actions, hints, timeout).Store(&id)
	return id, err
}

func (b busServer) CloseNotification(id uint32) error {
	return b.obj.Call(notifyIface+".CloseNotification", 0, id).Err
}

// DBusSurface posts notifications through the freedesktop notification
// server and routes action taps back to the daemon.
type DBusSurface struct {
	conn    *dbus.Conn
	srv     notificationServer
	appName string
	log     logger.Logger

	mu      sync.Mutex
	slots   map[int]uint32
	owners  map[uint32]int
	prompts map[uint32]func()
	handler ActionHandler
}

// NewDBusSurface connects to the session bus. It fails when no notification
// server owns the well-known name.
func NewDBusSurface(appName string, l logger.Logger) (*DBusSurface, error) {
	conn, err := bus.Session()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	if !bus.NameHasOwner(conn, notifyName) {
		conn.Close()
		return nil, fmt.Errorf("no notification server on the session bus")
	}
	s := newDBusSurface(busServer{obj: conn.Object(notifyName, notifyPath)}, appName, l)
	s.conn = conn
	return s, nil
}

func newDBusSurface(srv notificationServer, appName string, l logger.Logger) *DBusSurface {
	return &DBusSurface{
		srv:     srv,
		appName: appName,
		log:     l,
		slots:   make(map[int]uint32),
		owners:  make(map[uint32]int),
		prompts: make(map[uint32]func()),
	}
}

// OnAction sets the handler invoked for dismiss, snooze and open taps.
func (s *DBusSurface) OnAction(h ActionHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *DBusSurface) Show(_ context.Context, spec Spec) error {
	actions := make([]string, 0, 2*len(spec.Actions)+2)
	for _, a := range spec.Actions {
		actions = append(actions, actionKey(a), a.Label)
	}
	actions = append(actions, "default", "Open")
	urgency := urgencyNormal
	if spec.Critical {
		urgency = urgencyCritical
	}
	hints := map[string]dbus.Variant{
		"urgency":             dbus.MakeVariant(urgency),
		"category":            dbus.MakeVariant("x-warpalarm.alarm"),
		"resident":            dbus.MakeVariant(spec.Ongoing),
		"x-warpalarm-channel": dbus.MakeVariant(spec.Channel),
	}
	s.mu.Lock()
	replaces := s.slots[spec.Slot]
	s.mu.Unlock()
	id, err := s.srv.Notify(s.appName, replaces, "alarm-clock", spec.Title, spec.Body, actions, hints, 0)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	s.mu.Lock()
	if replaces != 0 && replaces != id {
		delete(s.owners, replaces)
	}
	s.slots[spec.Slot] = id
	s.owners[id] = spec.OpenTarget
	s.mu.Unlock()
	return nil
}

func (s *DBusSurface) Withdraw(_ context.Context, slot int) error {
	s.mu.Lock()
	id, ok := s.slots[slot]
	delete(s.slots, slot)
	delete(s.owners, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.srv.CloseNotification(id)
}

// Prompt posts an allow/deny notification. onAllow runs when the user taps Allow.
func (s *DBusSurface) Prompt(_ context.Context, title, body string, onAllow func()) error {
	actions := []string{promptAllow, "Allow", promptDeny, "Not now"}
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgencyNormal)}
	id, err := s.srv.Notify(s.appName, 0, "dialog-question", title, body, actions, hints, -1)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	s.mu.Lock()
	s.prompts[id] = onAllow
	s.mu.Unlock()
	return nil
}

// Inform posts a plain notification.
func (s *DBusSurface) Inform(_ context.Context, title, body string) error {
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgencyNormal)}
	_, err := s.srv.Notify(s.appName, 0, "dialog-information", title, body, nil, hints, -1)
	return err
}

// Listen dispatches notification signals until ctx is done.
func (s *DBusSurface) Listen(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("surface has no bus connection")
	}
	if err := s.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyIface),
	); err != nil {
		return fmt.Errorf("match signals: %w", err)
	}
	ch := make(chan *dbus.Signal, 16)
	s.conn.Signal(ch)
	defer s.conn.RemoveSignal(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			s.dispatch(sig)
		}
	}
}

func (s *DBusSurface) dispatch(sig *dbus.Signal) {
	if len(sig.Body) == 0 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}
	switch sig.Name {
	case signalAction:
		if len(sig.Body) < 2 {
			return
		}
		key, _ := sig.Body[1].(string)
		s.action(id, key)
	case signalClosed:
		s.mu.Lock()
		delete(s.prompts, id)
		s.mu.Unlock()
	}
}

func (s *DBusSurface) action(id uint32, key string) {
	s.mu.Lock()
	allow, isPrompt := s.prompts[id]
	if isPrompt {
		delete(s.prompts, id)
	}
	owner, isAlarm := s.owners[id]
	h := s.handler
	s.mu.Unlock()

	if isPrompt {
		if key == promptAllow && allow != nil {
			allow()
		}
		return
	}
	if !isAlarm || h == nil {
		return
	}
	if key == "default" {
		h(ActionOpen, owner)
		return
	}
	name, alarmID, err := ParseActionKey(key)
	if err != nil {
		s.log.Warning("notification %s: %v", strconv.FormatUint(uint64(id), 10), err)
		return
	}
	h(name, alarmID)
}

// Close releases the bus connection.
func (s *DBusSurface) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
