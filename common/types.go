package common

// Wire types shared by the daemon's RPC methods and the CLI client.
// JSON keys are fixed; front ends depend on them.

// ScheduleParams is the input for alarm.schedule.
// ID uses a pointer so a missing id can be told apart from id 0.
type ScheduleParams struct {
	ID              *int   `json:"id"`
	Title           string `json:"title,omitempty"`
	Body            string `json:"body,omitempty"`
	TriggerAtMillis int64  `json:"triggerAtMillis"`
	Type            string `json:"type,omitempty"`
}

// RepeatingParams is the input for alarm.scheduleRepeating.
type RepeatingParams struct {
	ID     *int   `json:"id"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body,omitempty"`
	Hour   *int   `json:"hour"`
	Minute *int   `json:"minute"`
	Type   string `json:"type,omitempty"`
}

// ScheduleResult is returned by both schedule methods.
type ScheduleResult struct {
	Success bool `json:"success"`
	AlarmID int  `json:"alarmId"`
	// TriggerAtMillis is the resolved fire time; for repeating alarms this is
	// the next occurrence.
	TriggerAtMillis int64 `json:"triggerAtMillis,omitempty"`
}

// IDParams carries a single alarm id. ID is a pointer so a missing id is
// not read as alarm 0.
type IDParams struct {
	ID *int `json:"id"`
}

// CancelResult is the response for alarm.cancel. Success is true whenever
// the call completed; Cancelled reports whether anything was pending.
type CancelResult struct {
	Success   bool `json:"success"`
	Cancelled bool `json:"cancelled"`
}

// SuccessResult is the minimal acknowledgement.
type SuccessResult struct {
	Success bool `json:"success"`
}

// PermissionsResult is the response for permissions.check.
type PermissionsResult struct {
	HasPermissions              bool `json:"hasPermissions"`
	CanScheduleExactAlarms      bool `json:"canScheduleExactAlarms"`
	BatteryOptimizationDisabled bool `json:"batteryOptimizationDisabled"`
}

// ExplanationResult is the response for permissions.explain.
type ExplanationResult struct {
	Message string `json:"message"`
}

// GrantParams is the input for permissions.grant.
// Capability is "exact" or "power".
type GrantParams struct {
	Capability string `json:"capability"`
}

// AlarmInfo describes a pending registration.
type AlarmInfo struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Body            string `json:"body,omitempty"`
	Type            string `json:"type"`
	TriggerAtMillis int64  `json:"triggerAtMillis"`
	OriginID        *int   `json:"originId,omitempty"`
	Daily           string `json:"daily,omitempty"`
}

// ListResult is the response for alarm.list.
type ListResult struct {
	Alarms []AlarmInfo `json:"alarms"`
}

// RingStatusResult is the response for ring.status and the payload of the
// ring.started / ring.stopped push notifications.
type RingStatusResult struct {
	State           string     `json:"state"`
	SessionID       string     `json:"sessionId,omitempty"`
	Alarm           *AlarmInfo `json:"alarm,omitempty"`
	StartedAtMillis int64      `json:"startedAt,omitempty"`
	Degraded        bool       `json:"degraded,omitempty"`
	// Reason is set on ring.stopped: dismissed, snoozed, replaced or shutdown.
	Reason string `json:"reason,omitempty"`
}

// SnoozeResult is the response for ring.snooze.
type SnoozeResult struct {
	Success         bool  `json:"success"`
	AlarmID         int   `json:"alarmId,omitempty"`
	TriggerAtMillis int64 `json:"triggerAtMillis,omitempty"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// Ring states reported by ring.status.
const (
	RingStateIdle    = "idle"
	RingStateRinging = "ringing"
)

// Push notification methods sent to websocket clients.
const (
	NotifyRingStarted = "ring.started"
	NotifyRingStopped = "ring.stopped"
)
