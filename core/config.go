package core

import "errors"

// Drive configuration errors.
var (
	ErrInvalidMaxPower     = errors.New("max power must be in (0, 1]")
	ErrInvalidTimeout      = errors.New("failsafe timeout must be positive")
	ErrInvalidInterval     = errors.New("task intervals must be positive")
	ErrInvalidVoltageScale = errors.New("voltage scale must be positive")
)

// DriveConfig holds the tunables of the motor drive.
type DriveConfig struct {
	// MaxPower scales every duty ratio; it is the current and thermal
	// margin of the bridge, not a user setting.
	MaxPower float32 `yaml:"max_power"`

	// FailsafeTimeout is the command age in ms beyond which the bridge trips
	FailsafeTimeout uint32 `yaml:"failsafe_timeout_ms"`

	// CheckInterval is the supervisor polling period in ms
	CheckInterval uint32 `yaml:"check_interval_ms"`

	// ReportInterval is the sensor report period in ms
	ReportInterval uint32 `yaml:"report_interval_ms"`

	// VoltageInterval is the battery voltage sampling period in ms
	VoltageInterval uint32 `yaml:"voltage_interval_ms"`

	// VoltageScale converts raw 10-bit divider counts to volts
	VoltageScale float32 `yaml:"voltage_scale"`
}

// DefaultDriveConfig returns the configuration of the stock vehicle:
// 30k/7.5k battery divider, 20% bridge power margin.
func DefaultDriveConfig() DriveConfig {
	return DriveConfig{
		MaxPower:        0.2,
		FailsafeTimeout: 500,
		CheckInterval:   1,
		ReportInterval:  10,
		VoltageInterval: 100,
		VoltageScale:    16.27,
	}
}

// Validate checks the configuration
func (c DriveConfig) Validate() error {
	if !(c.MaxPower > 0 && c.MaxPower <= 1) {
		return ErrInvalidMaxPower
	}
	if c.FailsafeTimeout == 0 {
		return ErrInvalidTimeout
	}
	if c.CheckInterval == 0 || c.ReportInterval == 0 || c.VoltageInterval == 0 {
		return ErrInvalidInterval
	}
	if !(c.VoltageScale > 0) {
		return ErrInvalidVoltageScale
	}
	return nil
}
