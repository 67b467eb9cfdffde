package core

import "errors"

var ErrDriveNotInitialized = errors.New("motor drive not initialized")

// DriveStatus is a snapshot of the drive for reporting
type DriveStatus struct {
	State       BridgeState
	Supervisor  SupervisorState
	Duty        float32
	Threshold   uint8
	LastCommand uint32 // Arrival time of the last command in ms
	Commands    uint32
	Rejected    uint32
	Trips       uint32
	Steer       float32 // Last steering angle received; recorded only
}

// MotorDrive wires the bridge, duty controller, failsafe supervisor and
// command ingestor for one half-bridge motor.
type MotorDrive struct {
	cfg DriveConfig

	Bridge     *Bridge
	Duty       *DutyController
	Supervisor *Supervisor
	Ingestor   *Ingestor

	fresh      CommandFreshness
	checkTimer Timer
	steer      float32
}

// NewMotorDrive assembles a drive on the given line driver and timer
func NewMotorDrive(cfg DriveConfig, lines LineDriver, timer CycleTimer) (*MotorDrive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &MotorDrive{cfg: cfg}
	m.Bridge = NewBridge(lines)
	m.Duty = NewDutyController(m.Bridge, timer, cfg.MaxPower)
	m.Supervisor = NewSupervisor(m.Duty, &m.fresh, cfg.FailsafeTimeout)
	m.Ingestor = NewIngestor(m.Duty, &m.fresh)
	return m, nil
}

// Init configures hardware and leaves the bridge Disabled
func (m *MotorDrive) Init() error {
	return m.Duty.Init()
}

// Start makes now the reference command time and schedules the supervisor
func (m *MotorDrive) Start(now uint32) {
	m.fresh.Reset(now)
	CancelTimer(&m.checkTimer)
	m.checkTimer.WakeTime = now + m.cfg.CheckInterval
	m.checkTimer.Handler = m.checkEvent
	ScheduleTimer(&m.checkTimer)
}

// checkEvent is the scheduler handler polling the supervisor
func (m *MotorDrive) checkEvent(t *Timer) uint8 {
	now := Millis()
	m.Supervisor.Check(now)
	t.WakeTime = now + m.cfg.CheckInterval
	return SF_RESCHEDULE
}

// Teardown stops supervision and releases the hardware
func (m *MotorDrive) Teardown() {
	CancelTimer(&m.checkTimer)
	m.Duty.Teardown()
	RecordEvent(EvtTeardown, 0, 0)
}

// HandleCarControl feeds one control record received at now. The
// supervisor is evaluated straight away so a resuming command takes effect
// in the same main loop pass.
func (m *MotorDrive) HandleCarControl(now uint32, throttle, steer float32) bool {
	m.steer = steer
	ok := m.Ingestor.Accept(now, throttle)
	m.Supervisor.Check(now)
	return ok
}

// Config returns the drive configuration
func (m *MotorDrive) Config() DriveConfig {
	return m.cfg
}

// Status returns a snapshot of the drive
func (m *MotorDrive) Status() DriveStatus {
	return DriveStatus{
		State:       m.Duty.State(),
		Supervisor:  m.Supervisor.State(),
		Duty:        m.Duty.Duty(),
		Threshold:   m.Duty.Threshold(),
		LastCommand: m.fresh.Last(),
		Commands:    m.fresh.Count(),
		Rejected:    m.Ingestor.Rejected(),
		Trips:       m.Supervisor.Trips(),
		Steer:       m.steer,
	}
}

// Global drive instance used by command handlers.
var motorDrive *MotorDrive

// InitMotorDrive builds and initialises the global drive from the
// registered line driver and cycle timer.
func InitMotorDrive(cfg DriveConfig) (*MotorDrive, error) {
	if motorDrive != nil {
		motorDrive.Teardown()
		motorDrive = nil
	}
	m, err := NewMotorDrive(cfg, MustLines(), MustCycleTimer())
	if err != nil {
		return nil, err
	}
	if err := m.Init(); err != nil {
		return nil, err
	}
	motorDrive = m
	return m, nil
}

// GetMotorDrive returns the global drive or nil before InitMotorDrive
func GetMotorDrive() *MotorDrive {
	return motorDrive
}
