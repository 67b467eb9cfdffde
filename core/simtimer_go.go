//go:build !tinygo

package core

// SimCycleTimer is a deterministic CycleTimer for regular Go builds.
// It models an 8-bit free-running counter: Advance steps it one count at
// a time, firing CycleStart on wrap to zero and then PhaseBoundary when the
// counter equals the compare value. Like timer2, a compare value of zero
// suppresses CycleStart so the high side never turns on at zero duty.
// Each count is handled in simulated interrupt context, so main-context
// critical sections exclude it.
type SimCycleTimer struct {
	handlers    CycleHandlers
	initialized bool
	running     bool
	counter     uint8
	compare     uint8
	cycles      uint32
	boundaries  uint32
}

// NewSimCycleTimer creates a stopped simulated timer
func NewSimCycleTimer() *SimCycleTimer {
	return &SimCycleTimer{}
}

func (t *SimCycleTimer) Init(h CycleHandlers) error {
	if h.CycleStart == nil || h.PhaseBoundary == nil {
		return ErrMissingHandler
	}
	t.handlers = h
	t.initialized = true
	t.running = false
	return nil
}

func (t *SimCycleTimer) Start() {
	if !t.initialized {
		return
	}
	t.counter = 0
	t.running = true
}

func (t *SimCycleTimer) Stop() {
	t.running = false
}

func (t *SimCycleTimer) SetCompare(threshold uint8) {
	t.compare = threshold
}

func (t *SimCycleTimer) Teardown() {
	t.running = false
	t.initialized = false
	t.handlers = CycleHandlers{}
}

// Advance steps the counter by counts timer ticks
func (t *SimCycleTimer) Advance(counts int) {
	for i := 0; i < counts; i++ {
		state := disableInterrupts()
		t.step()
		restoreInterrupts(state)
	}
}

// AdvanceCycles steps the counter by whole PWM cycles
func (t *SimCycleTimer) AdvanceCycles(cycles int) {
	t.Advance(cycles * CounterTop)
}

// AdvanceMillis steps the counter by ms milliseconds of timer clock
func (t *SimCycleTimer) AdvanceMillis(ms int) {
	t.Advance(ms * CountsPerMS)
}

func (t *SimCycleTimer) step() {
	if !t.running {
		return
	}
	t.counter++
	if t.counter == 0 {
		t.cycles++
		if t.compare != 0 {
			t.handlers.CycleStart()
		}
	}
	if t.counter == t.compare {
		t.boundaries++
		t.handlers.PhaseBoundary()
	}
}

// Running reports whether events are unmasked
func (t *SimCycleTimer) Running() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return t.running
}

// Compare returns the current compare value
func (t *SimCycleTimer) Compare() uint8 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return t.compare
}

// Cycles returns the number of counter wraps while running
func (t *SimCycleTimer) Cycles() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return t.cycles
}

// Boundaries returns the number of PhaseBoundary events fired
func (t *SimCycleTimer) Boundaries() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return t.boundaries
}
