package ring

import (
	"errors"
	"time"
)

// Pattern alternates off and on durations, starting with an initial delay.
// The vibrator repeats it until stopped.
var Pattern = []time.Duration{
	0,
	500 * time.Millisecond, 500 * time.Millisecond,
	500 * time.Millisecond, 500 * time.Millisecond,
	500 * time.Millisecond, 500 * time.Millisecond,
}

var ErrNoVibrator = errors.New("no vibration device")

// Vibrator drives a haptic device with a repeating pattern.
type Vibrator interface {
	Vibrate(pattern []time.Duration) (stop func(), err error)
}

// NoVibrator is used on hosts without haptics.
type NoVibrator struct{}

func (NoVibrator) Vibrate([]time.Duration) (func(), error) { return nil, ErrNoVibrator }
