package sim

import (
	"bytes"
	"sync"
	"time"

	"github.com/pkg/errors"

	"rcvip/core"
	"rcvip/protocol"
)

// maxCatchUp bounds how far one Sync may advance the emulated clock
const maxCatchUp = 10000

// ErrClosed is returned by I/O on a closed device
var ErrClosed = errors.New("device closed")

// Device emulates the vehicle controller behind a serial port. It installs
// simulated hardware and the global drive, so only one Device may be open
// at a time. Written packets are dispatched as the firmware main loop
// would; responses are queued for Read.
type Device struct {
	Lines *core.SimLines
	Timer *core.SimCycleTimer
	Drive *core.MotorDrive

	mu       sync.Mutex
	clock    func() uint32
	cur      uint32
	rx       *protocol.FifoBuffer
	frame    *protocol.ScratchOutput
	out      bytes.Buffer
	dropped  int
	failures int
	closed   bool
}

// NewDevice boots an emulated controller. clock returns the time in ms
// that the controller should observe.
func NewDevice(cfg core.DriveConfig, clock func() uint32) (*Device, error) {
	core.ResetTimers()
	core.ClearEventRing()

	d := &Device{
		Lines: core.NewSimLines(false),
		Timer: core.NewSimCycleTimer(),
		clock: clock,
		cur:   clock(),
		rx:    protocol.NewFifoBuffer(4 * protocol.PacketMaxBytes),
		frame: protocol.NewScratchOutput(),
	}
	core.SetMillis(d.cur)
	core.SetLineDriver(d.Lines)
	core.SetCycleTimer(d.Timer)
	core.InitDriveCommands()

	drive, err := core.InitMotorDrive(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init drive")
	}
	d.Drive = drive
	core.SetResponder(d.respond)
	drive.Start(d.cur)
	return d, nil
}

// WallClock returns a millisecond clock starting at zero now
func WallClock() func() uint32 {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Sync runs the controller up to the current clock time
func (d *Device) Sync() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.advance()
}

// advance runs one main loop pass per elapsed millisecond, with a
// millisecond of PWM counts between passes.
func (d *Device) advance() {
	now := d.clock()
	for steps := 0; d.cur != now && steps < maxCatchUp; steps++ {
		d.Timer.AdvanceMillis(1)
		d.cur++
		core.SetMillis(d.cur)
		core.ProcessTimers()
	}
}

// respond frames a response payload into the read queue
func (d *Device) respond(payload []byte) {
	d.frame.Reset()
	if err := protocol.AppendPacket(d.frame, payload); err != nil {
		d.failures++
		return
	}
	d.out.Write(d.frame.Result())
}

// Write feeds host bytes to the controller's packet reader
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	d.advance()

	n := d.rx.Write(p)
	for {
		payload, dropped := protocol.NextPacket(d.rx)
		d.dropped += dropped
		if payload == nil {
			break
		}
		if err := core.DispatchPayload(payload); err != nil {
			d.failures++
		}
	}
	return n, nil
}

// Read returns queued responses. With nothing queued it waits a
// millisecond and returns no data, like a serial read timeout.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ErrClosed
	}
	d.advance()
	if d.out.Len() == 0 {
		d.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	defer d.mu.Unlock()
	return d.out.Read(p)
}

// Flush discards queued responses
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out.Reset()
	return nil
}

// Close tears down the drive and detaches the responder
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.Drive.Teardown()
	core.SetResponder(nil)
	core.ResetTimers()
	return nil
}

// Dropped returns the number of bytes discarded while resynchronising
func (d *Device) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Failures returns the number of payloads the controller could not handle
func (d *Device) Failures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failures
}
