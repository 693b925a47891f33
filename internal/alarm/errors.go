package alarm

import "errors"

// Error taxonomy of the lifecycle engine. Callers match with errors.Is.
var (
	// ErrPermissionDenied means a required capability is missing; scheduling is refused.
	ErrPermissionDenied = errors.New("exact alarm permission not granted")

	// ErrInvalidRequest means a required field is missing or malformed.
	ErrInvalidRequest = errors.New("invalid alarm request")

	// ErrDeliveryDegraded means a session started but some channel (sound,
	// vibration, notification) is unavailable.
	ErrDeliveryDegraded = errors.New("ringing degraded")

	// ErrDeliveryFailed means no delivery strategy managed to start anything.
	ErrDeliveryFailed = errors.New("alarm delivery failed")

	// ErrRescheduleFailed means a snooze tore the session down but the
	// follow-up registration could not be made.
	ErrRescheduleFailed = errors.New("snooze reschedule failed")
)
