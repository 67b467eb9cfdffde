package core

// BridgeState is the drive state shared between the main context (writer)
// and the cycle interrupt handlers (reader).
type BridgeState uint8

const (
	// Disabled means all four lines are low and the cycle timer is stopped
	Disabled BridgeState = iota

	// Driving means the cycle timer alternates the on and off phases
	Driving
)

// String returns a human-readable state name.
func (s BridgeState) String() string {
	switch s {
	case Disabled:
		return "DISABLED"
	case Driving:
		return "DRIVING"
	default:
		return "UNKNOWN"
	}
}

// Bridge drives the gate lines of the motor half-bridges.
//
// On phase: PosHigh and NegLow conduct, current flows through the motor.
// Off phase: PosLow and NegLow conduct, both motor terminals tied to ground.
// The off phase never leaves a motor terminal floating.
//
// Every transition deasserts the outgoing lines before asserting the
// incoming ones, so no instant exists in which both switches of one
// half-bridge are on.
type Bridge struct {
	lines LineDriver
	state BridgeState // Written only inside a critical section
}

// NewBridge creates a bridge on the given line driver
func NewBridge(lines LineDriver) *Bridge {
	return &Bridge{lines: lines, state: Disabled}
}

// Configure sets every line up as an output and drives it low
func (b *Bridge) Configure() error {
	for line := LineID(0); line < NumLines; line++ {
		if err := b.lines.ConfigureOutput(line); err != nil {
			return err
		}
	}
	b.ForceSafe()
	return nil
}

// CycleStart enters the on phase. Interrupt context.
func (b *Bridge) CycleStart() {
	if b.state != Driving {
		return
	}
	b.lines.SetLine(PosLow, false)
	b.lines.SetLine(NegHigh, false)
	b.lines.SetLine(PosHigh, true)
	b.lines.SetLine(NegLow, true)
}

// PhaseBoundary enters the off phase. Interrupt context.
func (b *Bridge) PhaseBoundary() {
	if b.state != Driving {
		return
	}
	b.lines.SetLine(PosHigh, false)
	b.lines.SetLine(NegHigh, false)
	b.lines.SetLine(PosLow, true)
	b.lines.SetLine(NegLow, true)
}

// ForceSafe drives all four lines low, high sides first
func (b *Bridge) ForceSafe() {
	b.lines.SetLine(PosHigh, false)
	b.lines.SetLine(NegHigh, false)
	b.lines.SetLine(PosLow, false)
	b.lines.SetLine(NegLow, false)
}

// State returns the current bridge state
func (b *Bridge) State() BridgeState {
	state := disableInterrupts()
	s := b.state
	restoreInterrupts(state)
	return s
}
