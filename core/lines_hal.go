package core

// LineID identifies one of the four half-bridge gate lines. All lines are
// high-enable: true turns the MOSFET on.
type LineID uint8

const (
	PosHigh LineID = iota // High side of the positive motor terminal
	PosLow                // Low side of the positive motor terminal
	NegHigh               // High side of the negative motor terminal
	NegLow                // Low side of the negative motor terminal

	NumLines = 4
)

// String returns the line name used in traces
func (l LineID) String() string {
	switch l {
	case PosHigh:
		return "POS_HIGH"
	case PosLow:
		return "POS_LOW"
	case NegHigh:
		return "NEG_HIGH"
	case NegLow:
		return "NEG_LOW"
	default:
		return "LINE_" + itoa(int(l))
	}
}

// LineLatencyBoundNS is the worst-case SetLine latency a LineDriver must
// meet. The phase-boundary handler issues four writes and must finish well
// inside one timer count (500ns at 2MHz) plus interrupt entry.
const LineLatencyBoundNS = 1000

// LineDriver is the abstract gate-line interface the bridge uses.
// Platform-specific implementations handle actual hardware control.
type LineDriver interface {
	// ConfigureOutput configures a line as a digital output driven low
	ConfigureOutput(line LineID) error

	// SetLine drives a line high (true) or low (false).
	// Called from interrupt context: must complete within LineLatencyBoundNS,
	// must not allocate and must not block.
	SetLine(line LineID, level bool)
}

// ShootThrough reports whether a set of line levels turns on both switches
// of either half-bridge.
func ShootThrough(levels [NumLines]bool) bool {
	return (levels[PosHigh] && levels[PosLow]) || (levels[NegHigh] && levels[NegLow])
}

// Global singleton used by core code.
var lineDriver LineDriver

// SetLineDriver is called by target-specific code to register its driver.
func SetLineDriver(d LineDriver) {
	lineDriver = d
}

// MustLines returns the configured driver or panics if missing.
func MustLines() LineDriver {
	if lineDriver == nil {
		panic("line driver not configured")
	}
	return lineDriver
}
