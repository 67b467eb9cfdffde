package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testRig is a drive on simulated hardware with the scheduler and clock
// reset to t=0.
type testRig struct {
	lines *SimLines
	timer *SimCycleTimer
	drive *MotorDrive
}

func newRig(t *testing.T, cfg DriveConfig, tracing bool) *testRig {
	t.Helper()
	ResetTimers()
	ClearEventRing()
	SetMillis(0)

	lines := NewSimLines(tracing)
	timer := NewSimCycleTimer()
	drive, err := NewMotorDrive(cfg, lines, timer)
	require.NoError(t, err)
	require.NoError(t, drive.Init())
	drive.Start(0)

	t.Cleanup(func() {
		drive.Teardown()
		ResetTimers()
	})
	return &testRig{lines: lines, timer: timer, drive: drive}
}

// runTo advances the clock one millisecond at a time up to target. Each
// step delivers the command due at that time, runs the scheduler and then
// one millisecond of PWM counts.
func (r *testRig) runTo(target uint32, commands map[uint32]float32) {
	for Millis() != target {
		now := Millis() + 1
		SetMillis(now)
		if throttle, ok := commands[now]; ok {
			r.drive.HandleCarControl(now, throttle, 0)
		}
		ProcessTimers()
		r.timer.AdvanceMillis(1)
	}
}

// command delivers a command at the current time
func (r *testRig) command(throttle float32) bool {
	return r.drive.HandleCarControl(Millis(), throttle, 0)
}

func (r *testRig) state() BridgeState {
	return r.drive.Status().State
}

func countEvents(eventType uint8) int {
	n := 0
	for _, evt := range RecentEvents() {
		if evt.EventType == eventType {
			n++
		}
	}
	return n
}
