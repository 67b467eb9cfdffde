package core

// ValidDuty reports whether v is an acceptable duty ratio. NaN is invalid.
func ValidDuty(v float32) bool {
	return v >= 0 && v <= 1
}

// ThresholdFor converts a duty ratio to a phase-boundary count after
// scaling by maxPower. Monotonic in value; saturates at MaxThreshold.
func ThresholdFor(value, maxPower float32) uint8 {
	counts := value * maxPower * CounterTop
	if !(counts > 0) {
		return 0
	}
	if counts >= MaxThreshold {
		return MaxThreshold
	}
	return uint8(counts)
}

// DutyController owns the commanded duty ratio and the bridge state.
// All writes shared with the cycle handlers happen with interrupts masked.
type DutyController struct {
	bridge   *Bridge
	timer    CycleTimer
	maxPower float32

	duty        float32
	threshold   uint8
	initialized bool
}

// NewDutyController creates a controller driving bridge from timer
func NewDutyController(bridge *Bridge, timer CycleTimer, maxPower float32) *DutyController {
	return &DutyController{
		bridge:   bridge,
		timer:    timer,
		maxPower: maxPower,
	}
}

// Init configures the lines and the timer and leaves the bridge Disabled
func (d *DutyController) Init() error {
	if err := d.bridge.Configure(); err != nil {
		return err
	}
	err := d.timer.Init(CycleHandlers{
		CycleStart:    d.bridge.CycleStart,
		PhaseBoundary: d.bridge.PhaseBoundary,
	})
	if err != nil {
		return err
	}
	d.initialized = true
	d.Disable()
	return nil
}

// Teardown disables the bridge and releases the timer
func (d *DutyController) Teardown() {
	d.Disable()
	if d.initialized {
		d.timer.Teardown()
		d.initialized = false
	}
}

// Enable starts driving at the current duty. Idempotent.
func (d *DutyController) Enable() {
	// Only the main context writes state, so the unmasked read is stable.
	if !d.initialized || d.bridge.state == Driving {
		return
	}

	// The timer is stopped while Disabled; start from all lines low.
	d.bridge.ForceSafe()

	// Enter the off phase before the first event so the terminals are
	// grounded from the moment the state reads Driving.
	state := disableInterrupts()
	d.timer.SetCompare(d.threshold)
	d.bridge.state = Driving
	d.bridge.PhaseBoundary()
	d.timer.Start()
	restoreInterrupts(state)

	RecordEvent(EvtEnable, uint32(d.threshold), 0)
	DebugPrintln("[DRIVE] enabled threshold=" + utoa(uint32(d.threshold)))
}

// Disable stops the timer and forces every line low. Idempotent, and
// safe to call whether or not the timer was ever initialised.
func (d *DutyController) Disable() {
	state := disableInterrupts()
	if d.initialized {
		d.timer.Stop()
	}
	wasDriving := d.bridge.state == Driving
	d.bridge.state = Disabled
	restoreInterrupts(state)

	d.bridge.ForceSafe()

	if wasDriving {
		RecordEvent(EvtDisable, 0, 0)
		DebugPrintln("[DRIVE] disabled")
	}
}

// SetDuty sets the duty ratio. Any value outside [0, 1] is a stop request
// and disables the bridge; it is never clamped. SetDuty does not enable.
func (d *DutyController) SetDuty(value float32) {
	if !ValidDuty(value) {
		d.Disable()
		return
	}
	threshold := ThresholdFor(value, d.maxPower)

	state := disableInterrupts()
	d.duty = value
	d.threshold = threshold
	if d.initialized {
		d.timer.SetCompare(threshold)
	}
	restoreInterrupts(state)
}

// Duty returns the last accepted duty ratio
func (d *DutyController) Duty() float32 {
	return d.duty
}

// Threshold returns the phase-boundary count for the current duty
func (d *DutyController) Threshold() uint8 {
	return d.threshold
}

// State returns the bridge state
func (d *DutyController) State() BridgeState {
	return d.bridge.State()
}
