package core

import "errors"

// ErrMissingHandler is returned by CycleTimer.Init when a handler is nil
var ErrMissingHandler = errors.New("cycle handler missing")

// Free-running counter geometry shared by every CycleTimer implementation.
// A 16MHz clock with a /8 prescaler and an 8-bit counter gives a 7.8kHz cycle.
const (
	CounterTop   = 256
	TimerClockHz = 2000000
	CycleHz      = TimerClockHz / CounterTop
	CountsPerMS  = TimerClockHz / 1000
	MaxThreshold = CounterTop - 1
)

// CycleHandlers are the two interrupt-context events of a PWM cycle.
// Both run with interrupts otherwise disabled and must finish in a few
// microseconds.
type CycleHandlers struct {
	// CycleStart fires when the counter wraps to zero
	CycleStart func()

	// PhaseBoundary fires when the counter equals the compare threshold
	PhaseBoundary func()
}

// CycleTimer is the Timing Source: a free-running hardware counter that
// raises CycleStart and PhaseBoundary events once per cycle.
//
// Start, Stop and SetCompare are called with interrupts masked and must be
// a handful of register writes.
type CycleTimer interface {
	// Init configures the counter and attaches handlers with events masked
	Init(h CycleHandlers) error

	// Start resets the counter to zero and unmasks both events
	Start()

	// Stop masks both events and halts the counter
	Stop()

	// SetCompare sets the phase-boundary count
	SetCompare(threshold uint8)

	// Teardown stops the counter and detaches the handlers
	Teardown()
}

// Global singleton used by core code.
var cycleTimer CycleTimer

// SetCycleTimer is called by target-specific code to register its timer.
func SetCycleTimer(t CycleTimer) {
	cycleTimer = t
}

// MustCycleTimer returns the configured timer or panics if missing.
func MustCycleTimer() CycleTimer {
	if cycleTimer == nil {
		panic("cycle timer not configured")
	}
	return cycleTimer
}
