//go:build !tinygo

package core

import "sync"

// LineEvent is one recorded line write
type LineEvent struct {
	Line   LineID
	Level  bool
	Levels [NumLines]bool // Levels after the write
}

// SimLines is a logical LineDriver for regular Go builds. It checks every
// write for shoot-through, so an ordering bug shows up even when the end
// state of a transition is correct.
type SimLines struct {
	mu         sync.Mutex
	configured [NumLines]bool
	levels     [NumLines]bool
	trace      []LineEvent
	tracing    bool
	violations int
	writes     int
}

// NewSimLines creates a line bank; tracing records every write
func NewSimLines(tracing bool) *SimLines {
	return &SimLines{tracing: tracing}
}

func (s *SimLines) ConfigureOutput(line LineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured[line] = true
	s.levels[line] = false
	return nil
}

func (s *SimLines) SetLine(line LineID, level bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[line] = level
	s.writes++
	if ShootThrough(s.levels) {
		s.violations++
	}
	if s.tracing {
		s.trace = append(s.trace, LineEvent{Line: line, Level: level, Levels: s.levels})
	}
}

// Levels returns the current line levels
func (s *SimLines) Levels() [NumLines]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels
}

// Level returns the current level of one line
func (s *SimLines) Level(line LineID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[line]
}

// Configured reports whether a line was configured as an output
func (s *SimLines) Configured(line LineID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured[line]
}

// Violations returns the number of writes that left a half-bridge shorted
func (s *SimLines) Violations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.violations
}

// Writes returns the number of SetLine calls
func (s *SimLines) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Trace returns a copy of the recorded writes
func (s *SimLines) Trace() []LineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineEvent(nil), s.trace...)
}
