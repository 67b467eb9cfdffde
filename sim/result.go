package sim

import (
	"fmt"

	"rcvip/core"
	"rcvip/host/mcu"
)

// Transition is a change of drive state observed at At ms
type Transition struct {
	At         uint32
	State      core.BridgeState
	Supervisor core.SupervisorState
	Threshold  uint8
}

// String formats the transition for timeline output
func (t Transition) String() string {
	return fmt.Sprintf("%6dms %-8s %-7s threshold=%d", t.At, t.State, t.Supervisor, t.Threshold)
}

// Result is the outcome of one scenario run
type Result struct {
	Name       string
	Timeline   []Transition
	Failures   []string
	Violations int
	Cycles     uint32
}

// OK reports whether every expectation held and no shoot-through occurred
func (r *Result) OK() bool {
	return len(r.Failures) == 0 && r.Violations == 0
}

func (r *Result) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// check compares a reported status against an expectation
func (r *Result) check(e *Expect, st *mcu.DriveStatus) {
	if e.State != "" {
		want, _ := ParseState(e.State)
		if st.State != want {
			r.failf("t=%dms: state %s, want %s", e.At, st.State, want)
		}
	}
	if e.Tripped != nil {
		tripped := st.Supervisor == core.Tripped
		if tripped != *e.Tripped {
			r.failf("t=%dms: tripped %v, want %v", e.At, tripped, *e.Tripped)
		}
	}
	if e.Threshold != nil && st.Threshold != *e.Threshold {
		r.failf("t=%dms: threshold %d, want %d", e.At, st.Threshold, *e.Threshold)
	}
}
