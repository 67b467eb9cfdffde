package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailsafeInitialState(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)

	st := r.drive.Status()
	assert.Equal(t, Disabled, st.State)
	assert.Equal(t, Normal, st.Supervisor)
	assert.False(t, r.drive.Supervisor.Tripped())
}

func TestFailsafeTripsAfterTimeout(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	require.True(t, r.command(0.5))
	r.runTo(1, nil)
	require.Equal(t, Driving, r.state())

	r.runTo(500, nil)
	assert.Equal(t, Driving, r.state(), "age of exactly 500ms is not stale")

	r.runTo(501, nil)
	assert.Equal(t, Disabled, r.state())
	assert.True(t, r.drive.Supervisor.Tripped())
	assert.Equal(t, [NumLines]bool{}, r.lines.Levels())
	assert.Equal(t, uint32(1), r.drive.Status().Trips)
}

func TestFailsafeTripsWithoutAnyCommand(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	r.runTo(501, nil)
	assert.Equal(t, Tripped, r.drive.Supervisor.State())
	assert.Equal(t, Disabled, r.state())
}

func TestFailsafeHoldsWithSteadyCommands(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	commands := map[uint32]float32{}
	for at := uint32(100); at <= 3000; at += 100 {
		commands[at] = 0.5
	}
	require.True(t, r.command(0.5))

	for at := uint32(50); at <= 3000; at += 50 {
		r.runTo(at, commands)
		require.Equal(t, Driving, r.state(), "t=%d", at)
	}
	assert.Zero(t, r.drive.Supervisor.Trips())
	assert.Zero(t, r.lines.Violations())
}

func TestFailsafeRecoveryUsesNewDuty(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	require.True(t, r.command(0.8))
	r.runTo(600, nil)
	require.True(t, r.drive.Supervisor.Tripped())

	require.True(t, r.command(0.3))
	assert.Equal(t, Driving, r.state())
	assert.False(t, r.drive.Supervisor.Tripped())
	assert.Equal(t, ThresholdFor(0.3, 0.2), r.drive.Status().Threshold)
	assert.Equal(t, ThresholdFor(0.3, 0.2), r.timer.Compare())
	assert.Equal(t, 1, countEvents(EvtRecover))
}

func TestFailsafeRecoveryWithStopCommandStaysDisabled(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	require.True(t, r.command(0.5))
	r.runTo(600, nil)
	require.True(t, r.drive.Supervisor.Tripped())

	assert.False(t, r.command(NoSignalThrottle))
	assert.Equal(t, Normal, r.drive.Supervisor.State())
	assert.Equal(t, Disabled, r.state())

	r.runTo(650, nil)
	assert.Equal(t, Disabled, r.state())
}

func TestOutOfRangeCommandsYieldDisabled(t *testing.T) {
	for _, throttle := range []float32{1.5, -0.1} {
		r := newRig(t, DefaultDriveConfig(), false)
		require.True(t, r.command(0.5))
		r.runTo(10, nil)
		require.Equal(t, Driving, r.state())

		commands := map[uint32]float32{20: throttle, 120: throttle, 220: throttle}
		r.runTo(300, commands)

		assert.Equal(t, Disabled, r.state(), "throttle %v", throttle)
		assert.Equal(t, Normal, r.drive.Supervisor.State(), "throttle %v keeps commands fresh", throttle)
		assert.Equal(t, float32(0.5), r.drive.Status().Duty, "throttle %v is not clamped", throttle)
		assert.Equal(t, uint32(3), r.drive.Status().Rejected)
	}
}

func TestValidCommandAfterStopResumes(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	require.True(t, r.command(0.5))
	r.runTo(10, map[uint32]float32{5: 1.5})
	require.Equal(t, Disabled, r.state())

	r.runTo(20, map[uint32]float32{15: 0.2})
	assert.Equal(t, Driving, r.state())
	assert.Equal(t, ThresholdFor(0.2, 0.2), r.timer.Compare())
}

// Commands at t=0 and t=100, silence until t=700, then a new throttle.
func TestFailsafeScenario(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	require.True(t, r.command(0.5))
	r.runTo(1, nil)
	require.Equal(t, Driving, r.state())
	half := r.drive.Status().Threshold

	r.runTo(100, map[uint32]float32{100: 0.5})
	assert.Equal(t, Driving, r.state())
	assert.Equal(t, half, r.drive.Status().Threshold)

	r.runTo(600, nil)
	assert.Equal(t, Driving, r.state())
	r.runTo(601, nil)
	assert.Equal(t, Disabled, r.state())

	r.runTo(700, map[uint32]float32{700: 0.3})
	assert.Equal(t, Driving, r.state())
	assert.Equal(t, ThresholdFor(0.3, 0.2), r.drive.Status().Threshold)
	assert.Equal(t, float32(0.3), r.drive.Status().Duty)

	r.runTo(720, nil)
	assert.Zero(t, r.lines.Violations())
	assert.Greater(t, r.timer.Cycles(), uint32(0))
}

func TestFailsafeClockWraparound(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	start := uint32(0xFFFFFF00)
	SetMillis(start)
	r.drive.Start(start)

	require.True(t, r.command(0.5))
	r.runTo(start+1, nil)
	require.Equal(t, Driving, r.state())

	r.runTo(start+500, nil)
	assert.Equal(t, Driving, r.state())
	r.runTo(start+501, nil)
	assert.Equal(t, Disabled, r.state())
}
