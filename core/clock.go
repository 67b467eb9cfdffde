package core

import "sync/atomic"

// systemMillis is written by the target main loop and read by tasks
var systemMillis atomic.Uint32

// Millis returns the system time in milliseconds. The counter wraps after
// about 49.7 days; compare times with Elapsed or TimeBefore, never with <.
func Millis() uint32 {
	return systemMillis.Load()
}

// SetMillis sets the system time (hardware integration and tests)
func SetMillis(ms uint32) {
	systemMillis.Store(ms)
}

// Elapsed returns the milliseconds from since to now, modulo 2^32
func Elapsed(now, since uint32) uint32 {
	return now - since
}

// TimeBefore reports whether a is strictly earlier than b
func TimeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
