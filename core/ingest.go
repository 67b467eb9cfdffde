package core

import (
	"sync/atomic"

	"rcvip/protocol"
)

// CommandFreshness records when the last command arrived and whether it
// carried a usable throttle. Written by the Ingestor, read by the
// Supervisor; word-sized atomics need no lock.
type CommandFreshness struct {
	last  atomic.Uint32
	valid atomic.Bool
	count atomic.Uint32
}

// Reset marks now as the reference time with no valid command yet
func (f *CommandFreshness) Reset(now uint32) {
	f.last.Store(now)
	f.valid.Store(false)
	f.count.Store(0)
}

func (f *CommandFreshness) touch(now uint32, valid bool) {
	f.last.Store(now)
	f.valid.Store(valid)
	f.count.Add(1)
}

// Last returns the arrival time of the last command in ms
func (f *CommandFreshness) Last() uint32 {
	return f.last.Load()
}

// LastValid reports whether the last command carried a usable throttle
func (f *CommandFreshness) LastValid() bool {
	return f.valid.Load()
}

// Count returns the number of commands received since Reset
func (f *CommandFreshness) Count() uint32 {
	return f.count.Load()
}

// Age returns the age of the last command at now
func (f *CommandFreshness) Age(now uint32) uint32 {
	return Elapsed(now, f.last.Load())
}

// Ingestor is the single entry point for external throttle commands
type Ingestor struct {
	duty     *DutyController
	fresh    *CommandFreshness
	rejected uint32
}

// NewIngestor creates an ingestor feeding duty and recording into fresh
func NewIngestor(duty *DutyController, fresh *CommandFreshness) *Ingestor {
	return &Ingestor{duty: duty, fresh: fresh}
}

// Accept handles one throttle command received at now. Arrival refreshes
// the command time whatever the content. A throttle outside [0, 1] (or NaN,
// the no-signal sentinel) is a stop request: the bridge is disabled and the
// value goes no further. Returns whether the throttle was accepted.
func (in *Ingestor) Accept(now uint32, throttle float32) bool {
	if !ValidDuty(throttle) {
		in.fresh.touch(now, false)
		in.duty.Disable()
		in.rejected++
		RecordEvent(EvtReject, uint32(protocol.ToFixed(throttle)), 0)
		if debugEnabled {
			DebugPrintln("[DRIVE] stop request throttle=" + fractionString(throttle))
		}
		return false
	}

	in.duty.SetDuty(throttle)
	in.fresh.touch(now, true)
	RecordEvent(EvtCommand, uint32(protocol.ToFixed(throttle)), uint32(in.duty.Threshold()))
	return true
}

// Rejected returns the number of out-of-range commands seen
func (in *Ingestor) Rejected() uint32 {
	return in.rejected
}
