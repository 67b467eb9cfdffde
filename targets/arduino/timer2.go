//go:build atmega328p

package main

import (
	"device/avr"
	"runtime/interrupt"

	"rcvip/core"
)

// Timer2 is the 8-bit counter pacing the PWM cycle. With a prescaler of 8
// at 16 MHz it counts at 2 MHz and overflows every 256 counts (7.8125 kHz).
// Overflow starts a cycle; compare match A ends the on-time.
type Timer2 struct{}

var timer2Handlers core.CycleHandlers

// NewTimer2 creates the timer2 cycle timer
func NewTimer2() *Timer2 {
	return &Timer2{}
}

// Init configures normal mode with both events masked and attaches the
// handlers
func (t *Timer2) Init(h core.CycleHandlers) error {
	if h.CycleStart == nil || h.PhaseBoundary == nil {
		return core.ErrMissingHandler
	}
	timer2Handlers = h

	avr.TIMSK2.Set(0)
	avr.TCCR2A.Set(0)
	avr.TCCR2B.Set(0)
	avr.TCNT2.Set(0)
	avr.OCR2A.Set(0)

	interrupt.New(avr.IRQ_TIMER2_OVF, func(interrupt.Interrupt) {
		// A zero threshold matches on the overflow count itself and
		// COMPA is serviced first; skipping the cycle start keeps
		// zero duty off.
		if avr.OCR2A.Get() != 0 {
			timer2Handlers.CycleStart()
		}
	}).Enable()
	interrupt.New(avr.IRQ_TIMER2_COMPA, func(interrupt.Interrupt) {
		timer2Handlers.PhaseBoundary()
	}).Enable()
	return nil
}

// Start resets the counter and unmasks both events. Caller holds the mask.
func (t *Timer2) Start() {
	avr.TCNT2.Set(0)
	avr.TIFR2.Set(avr.TIFR2_TOV2 | avr.TIFR2_OCF2A)
	avr.TIMSK2.Set(avr.TIMSK2_TOIE2 | avr.TIMSK2_OCIE2A)
	avr.TCCR2B.Set(avr.TCCR2B_CS21)
}

// Stop masks both events and halts the counter. Caller holds the mask.
func (t *Timer2) Stop() {
	avr.TIMSK2.Set(0)
	avr.TCCR2B.Set(0)
}

// SetCompare sets the on-time threshold. Caller holds the mask.
func (t *Timer2) SetCompare(threshold uint8) {
	avr.OCR2A.Set(threshold)
}

// Teardown stops the timer and detaches the handlers
func (t *Timer2) Teardown() {
	t.Stop()
	timer2Handlers = core.CycleHandlers{}
}
