//go:build atmega328p

package main

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mpu6050"

	"rcvip/core"
)

// MPU6050 adapts the motion sensor to core.IMU
type MPU6050 struct {
	dev *mpu6050.Device
}

// NewIMU brings up the MPU6050 on I2C0. It returns nil when the sensor
// does not answer, so the poller runs without it.
func NewIMU() core.IMU {
	if err := machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		return nil
	}
	dev := mpu6050.New(machine.I2C0, mpu6050.DefaultAddress)
	if err := dev.Configure(mpu6050.Config{}); err != nil {
		return nil
	}
	return &MPU6050{dev: dev}
}

// ReadMotion6 reads one sample in the driver's units: micro-g and
// micro-radians per second.
func (m *MPU6050) ReadMotion6() (core.Motion6, error) {
	if err := m.dev.Update(drivers.Acceleration | drivers.AngularVelocity); err != nil {
		return core.Motion6{}, err
	}
	var s core.Motion6
	s.AX, s.AY, s.AZ = m.dev.Acceleration()
	s.GX, s.GY, s.GZ = m.dev.AngularVelocity()
	return s, nil
}
