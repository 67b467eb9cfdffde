package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdFor(t *testing.T) {
	tests := []struct {
		name     string
		value    float32
		maxPower float32
		want     uint8
	}{
		{"Zero", 0, 0.2, 0},
		{"Half", 0.5, 0.2, 25},
		{"ThreeTenths", 0.3, 0.2, 15},
		{"Full", 1, 0.2, 51},
		{"FullPowerSaturates", 1, 1, MaxThreshold},
		{"HalfFullPower", 0.5, 1, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdFor(tt.value, tt.maxPower))
		})
	}
}

func TestThresholdMonotonic(t *testing.T) {
	for _, maxPower := range []float32{0.2, 0.5, 1} {
		prev := ThresholdFor(0, maxPower)
		for i := 1; i <= 10000; i++ {
			v := float32(i) / 10000
			th := ThresholdFor(v, maxPower)
			require.GreaterOrEqual(t, th, prev, "maxPower=%v value=%v", maxPower, v)
			prev = th
		}
	}
}

func TestValidDuty(t *testing.T) {
	assert.True(t, ValidDuty(0))
	assert.True(t, ValidDuty(1))
	assert.True(t, ValidDuty(0.5))
	assert.False(t, ValidDuty(-0.1))
	assert.False(t, ValidDuty(1.5))
	assert.False(t, ValidDuty(float32(math.NaN())))
	assert.False(t, ValidDuty(float32(math.Inf(1))))
}

func TestEnableIdempotent(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	d := r.drive.Duty
	d.SetDuty(0.5)

	d.Enable()
	levels := r.lines.Levels()
	compare := r.timer.Compare()
	d.Enable()

	assert.Equal(t, Driving, d.State())
	assert.True(t, r.timer.Running())
	assert.Equal(t, levels, r.lines.Levels())
	assert.Equal(t, compare, r.timer.Compare())
	assert.Equal(t, 1, countEvents(EvtEnable))
}

func TestDisableIdempotent(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	d := r.drive.Duty
	d.SetDuty(0.5)
	d.Enable()
	r.timer.AdvanceCycles(3)

	d.Disable()
	once := r.lines.Levels()
	d.Disable()

	assert.Equal(t, Disabled, d.State())
	assert.False(t, r.timer.Running())
	assert.Equal(t, [NumLines]bool{}, once)
	assert.Equal(t, once, r.lines.Levels())
	assert.Equal(t, 1, countEvents(EvtDisable))
}

func TestDisableWithoutTimer(t *testing.T) {
	lines := NewSimLines(false)
	timer := NewSimCycleTimer()
	d := NewDutyController(NewBridge(lines), timer, 0.2)

	lines.SetLine(PosHigh, true)
	lines.SetLine(NegLow, true)
	d.Disable()

	assert.Equal(t, [NumLines]bool{}, lines.Levels())
	assert.Equal(t, Disabled, d.State())
}

func TestEnableBeforeInitStaysDisabled(t *testing.T) {
	d := NewDutyController(NewBridge(NewSimLines(false)), NewSimCycleTimer(), 0.2)
	d.Enable()
	assert.Equal(t, Disabled, d.State())
}

func TestSetDutyOutOfRangeDisables(t *testing.T) {
	for _, v := range []float32{1.5, -0.1} {
		r := newRig(t, DefaultDriveConfig(), false)
		d := r.drive.Duty
		d.SetDuty(0.5)
		d.Enable()

		d.SetDuty(v)
		assert.Equal(t, Disabled, d.State(), "value %v", v)
		assert.Equal(t, float32(0.5), d.Duty(), "value %v is not clamped into the duty", v)
		assert.Equal(t, uint8(25), d.Threshold())
	}
}

func TestSetDutyWhileDisabledDoesNotEnable(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	r.drive.Duty.SetDuty(0.3)

	assert.Equal(t, Disabled, r.drive.Duty.State())
	assert.Equal(t, uint8(15), r.timer.Compare())
	r.drive.Duty.Enable()
	assert.Equal(t, uint8(15), r.timer.Compare())
}

func TestDutyCycleOnTime(t *testing.T) {
	cfg := DefaultDriveConfig()
	cfg.MaxPower = 1
	r := newRig(t, cfg, false)
	d := r.drive.Duty
	d.SetDuty(0.25)
	d.Enable()

	// Sample PosHigh on each count over whole cycles.
	r.timer.AdvanceCycles(1)
	high := 0
	for i := 0; i < CounterTop*4; i++ {
		r.timer.Advance(1)
		if r.lines.Level(PosHigh) {
			high++
		}
	}
	assert.Equal(t, 4*int(ThresholdFor(0.25, 1)), high)
	assert.Zero(t, r.lines.Violations())
}

func TestConcurrentDutyUpdatesNeverShort(t *testing.T) {
	cfg := DefaultDriveConfig()
	cfg.MaxPower = 1
	r := newRig(t, cfg, false)
	d := r.drive.Duty
	d.SetDuty(0.5)
	d.Enable()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.timer.AdvanceCycles(300)
	}()

	for i := 0; i < 3000; i++ {
		d.SetDuty(float32(i%11) / 10)
		if i%97 == 0 {
			d.Disable()
			d.Enable()
		}
	}
	<-done

	assert.Zero(t, r.lines.Violations())
	assert.Greater(t, r.lines.Writes(), 0)
}

func TestZeroDutyNeverAssertsHighSide(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), true)
	d := r.drive.Duty
	d.SetDuty(0)
	d.Enable()
	require.Equal(t, Driving, d.State())
	require.Equal(t, uint8(0), r.timer.Compare())

	r.timer.AdvanceCycles(4)

	assert.NotContains(t, highLines(r.lines.Trace()), PosHigh)
	assert.Equal(t, [NumLines]bool{PosLow: true, NegLow: true}, r.lines.Levels())
	assert.Zero(t, r.lines.Violations())
}

func TestEnableGroundsTerminalsBeforeFirstEvent(t *testing.T) {
	r := newRig(t, DefaultDriveConfig(), false)
	d := r.drive.Duty
	d.SetDuty(0.5)
	d.Enable()

	for i := 0; i < CounterTop; i++ {
		levels := r.lines.Levels()
		if d.State() == Driving {
			require.True(t, levels[NegLow], "count %d", i)
			require.True(t, levels[PosLow] || levels[PosHigh], "count %d left the positive terminal floating", i)
		}
		r.timer.Advance(1)
	}
	assert.Zero(t, r.lines.Violations())
}
