//go:build atmega328p

package main

import (
	"machine"
)

// DividerSensor reads the battery voltage divider on an analog pin
type DividerSensor struct {
	adc machine.ADC
}

// NewDividerSensor configures the ADC on pin
func NewDividerSensor(pin machine.Pin) *DividerSensor {
	machine.InitADC()
	adc := machine.ADC{Pin: pin}
	adc.Configure(machine.ADCConfig{})
	return &DividerSensor{adc: adc}
}

// ReadRaw returns the divider reading as 10-bit counts.
// machine.ADC scales samples to 16 bits.
func (s *DividerSensor) ReadRaw() (uint16, error) {
	return s.adc.Get() >> 6, nil
}
