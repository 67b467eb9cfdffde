package core

// SupervisorState is the failsafe state.
type SupervisorState uint8

const (
	// Normal indicates commands are fresh
	Normal SupervisorState = iota

	// Tripped indicates the supervisor forced the bridge Disabled
	Tripped
)

// String returns a human-readable state name.
func (s SupervisorState) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case Tripped:
		return "TRIPPED"
	default:
		return "UNKNOWN"
	}
}

// Supervisor disables the bridge when commands stop arriving and restores
// it when they resume. Check is polled from the main context; it never
// blocks.
type Supervisor struct {
	duty    *DutyController
	fresh   *CommandFreshness
	timeout uint32

	state SupervisorState
	trips uint32
}

// NewSupervisor creates a supervisor tripping after timeout ms of silence
func NewSupervisor(duty *DutyController, fresh *CommandFreshness, timeout uint32) *Supervisor {
	return &Supervisor{
		duty:    duty,
		fresh:   fresh,
		timeout: timeout,
		state:   Normal,
	}
}

// Check evaluates command freshness at now.
//
//   - stale while Normal: disable the bridge, whatever the commanded duty,
//     and trip.
//   - fresh while Tripped: clear the trip and re-enable at the duty carried
//     by the command that ended the silence. If that command was a stop
//     request the bridge stays Disabled.
//   - fresh while Normal with the bridge Disabled and a valid last command:
//     enable. This covers the first command after boot and the first valid
//     command after a stop request.
//
// Resume is instant; there is no ramp back to the commanded duty.
func (s *Supervisor) Check(now uint32) {
	age := s.fresh.Age(now)
	if age > s.timeout {
		if s.state == Normal {
			s.state = Tripped
			s.trips++
			s.duty.Disable()
			RecordEvent(EvtTrip, age, s.trips)
			DebugPrintln("[DRIVE] failsafe tripped age=" + utoa(age))
		}
		return
	}

	if s.state == Tripped {
		s.state = Normal
		resumed := s.fresh.LastValid()
		if resumed {
			s.duty.Enable()
		}
		RecordEvent(EvtRecover, boolToUint32(resumed), 0)
		DebugPrintln("[DRIVE] failsafe cleared")
		return
	}

	if s.fresh.LastValid() && s.duty.State() == Disabled {
		s.duty.Enable()
	}
}

// State returns the supervisor state
func (s *Supervisor) State() SupervisorState {
	return s.state
}

// Tripped reports whether the failsafe currently holds the bridge Disabled
func (s *Supervisor) Tripped() bool {
	return s.state == Tripped
}

// Trips returns the number of trips since boot
func (s *Supervisor) Trips() uint32 {
	return s.trips
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
