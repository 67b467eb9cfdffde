package core

// Motion6 is one accelerometer and gyroscope sample in the IMU driver's units
type Motion6 struct {
	AX, AY, AZ int32
	GX, GY, GZ int32
}

// IMU reads raw motion samples. Calibration and fusion happen upstream.
type IMU interface {
	ReadMotion6() (Motion6, error)
}

// VoltageSensor reads the battery divider as raw 10-bit counts
type VoltageSensor interface {
	ReadRaw() (uint16, error)
}

// Sensor codes for EvtSensorErr
const (
	SensorVoltage = 1
	SensorIMU     = 2
	SensorPublish = 3 // car_sensors could not be encoded
)

// ScaleVoltage converts raw divider counts to volts
func ScaleVoltage(raw uint16, scale float32) float32 {
	return float32(raw) / scale
}

// SensorReport is the republished sensor snapshot
type SensorReport struct {
	Voltage  float32
	Motion   Motion6
	Failsafe bool
}

// SensorPoller samples the sensors on the housekeeping cadence and
// republishes them. Nothing in the drive's safety logic reads its output.
type SensorPoller struct {
	cfg   DriveConfig
	volt  VoltageSensor
	imu   IMU
	drive *MotorDrive

	report      SensorReport
	lastVoltage uint32
	sampled     bool
	errors      uint32
	dropped     uint32
	timer       Timer
}

// NewSensorPoller creates a poller; volt and imu may be nil when absent
func NewSensorPoller(cfg DriveConfig, volt VoltageSensor, imu IMU, drive *MotorDrive) *SensorPoller {
	return &SensorPoller{cfg: cfg, volt: volt, imu: imu, drive: drive}
}

// Poll samples due sensors at now and returns the updated report
func (p *SensorPoller) Poll(now uint32) SensorReport {
	if p.volt != nil && (!p.sampled || Elapsed(now, p.lastVoltage) >= p.cfg.VoltageInterval) {
		p.lastVoltage = now
		p.sampled = true
		if raw, err := p.volt.ReadRaw(); err == nil {
			p.report.Voltage = ScaleVoltage(raw, p.cfg.VoltageScale)
		} else {
			p.errors++
			RecordEvent(EvtSensorErr, SensorVoltage, p.errors)
		}
	}

	if p.imu != nil {
		if m, err := p.imu.ReadMotion6(); err == nil {
			p.report.Motion = m
		} else {
			p.errors++
			RecordEvent(EvtSensorErr, SensorIMU, p.errors)
		}
	}

	if p.drive != nil {
		p.report.Failsafe = p.drive.Supervisor.Tripped()
	}
	return p.report
}

// Publish sends the current report as a car_sensors response
func (p *SensorPoller) Publish() error {
	r := p.report
	return SendResponse("car_sensors",
		int32(r.Voltage*1000),
		r.Motion.AX, r.Motion.AY, r.Motion.AZ,
		r.Motion.GX, r.Motion.GY, r.Motion.GZ,
		int32(boolToUint32(r.Failsafe)))
}

// Start schedules polling and publishing every ReportInterval
func (p *SensorPoller) Start(now uint32) {
	CancelTimer(&p.timer)
	p.timer.WakeTime = now
	p.timer.Handler = p.reportEvent
	ScheduleTimer(&p.timer)
}

// Stop cancels the scheduled polling
func (p *SensorPoller) Stop() {
	CancelTimer(&p.timer)
}

// Errors returns the number of failed sensor reads
func (p *SensorPoller) Errors() uint32 {
	return p.errors
}

// Dropped returns the number of reports that failed to publish
func (p *SensorPoller) Dropped() uint32 {
	return p.dropped
}

func (p *SensorPoller) reportEvent(t *Timer) uint8 {
	now := Millis()
	p.Poll(now)
	if err := p.Publish(); err != nil {
		p.dropped++
		RecordEvent(EvtSensorErr, SensorPublish, p.dropped)
	}
	t.WakeTime = now + p.cfg.ReportInterval
	return SF_RESCHEDULE
}
