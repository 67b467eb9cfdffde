//go:build atmega328p

package main

import (
	"device/avr"
	"runtime/volatile"

	"rcvip/core"
)

// portBit is one gate line as a port register bit
type portBit struct {
	port *volatile.Register8
	ddr  *volatile.Register8
	mask uint8
}

// PortLines drives the bridge gates with direct port writes. A single
// SetBits or ClearBits is one instruction, well inside
// core.LineLatencyBoundNS at 16 MHz.
type PortLines struct {
	bits [core.NumLines]portBit
}

// NewPortLines maps the gate lines to their Nano pins:
// PosHigh D9 (PB1), PosLow D6 (PD6), NegHigh D11 (PB3), NegLow D10 (PB2).
func NewPortLines() *PortLines {
	return &PortLines{
		bits: [core.NumLines]portBit{
			core.PosHigh: {port: avr.PORTB, ddr: avr.DDRB, mask: 1 << 1},
			core.PosLow:  {port: avr.PORTD, ddr: avr.DDRD, mask: 1 << 6},
			core.NegHigh: {port: avr.PORTB, ddr: avr.DDRB, mask: 1 << 3},
			core.NegLow:  {port: avr.PORTB, ddr: avr.DDRB, mask: 1 << 2},
		},
	}
}

// ConfigureOutput drives the line low and makes it an output
func (l *PortLines) ConfigureOutput(line core.LineID) error {
	b := l.bits[line]
	b.port.ClearBits(b.mask)
	b.ddr.SetBits(b.mask)
	return nil
}

// SetLine sets the line level
func (l *PortLines) SetLine(line core.LineID, level bool) {
	b := l.bits[line]
	if level {
		b.port.SetBits(b.mask)
	} else {
		b.port.ClearBits(b.mask)
	}
}
