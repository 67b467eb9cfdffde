package mcu

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"rcvip/core"
	"rcvip/host/serial"
	"rcvip/protocol"
)

// ErrTimeout is returned when no matching response arrives in time
var ErrTimeout = errors.New("timed out waiting for response")

// MCU is a packet link to the vehicle controller. It shares the
// controller's command registry, so message IDs match by construction.
type MCU struct {
	port     io.ReadWriteCloser
	registry *core.CommandRegistry
	log      *slog.Logger

	rx      *protocol.FifoBuffer
	payload *protocol.ScratchOutput
	frame   *protocol.ScratchOutput
	readBuf [protocol.PacketMaxBytes]byte

	badPackets int
}

// Message is one decoded response from the controller
type Message struct {
	Name string
	Args map[string]int32
}

// DriveStatus is the decoded drive_status response
type DriveStatus struct {
	State      core.BridgeState
	Supervisor core.SupervisorState
	Threshold  uint8
	Duty       float32
	Trips      uint32
}

// New creates a link over an open port. A nil logger uses slog.Default.
func New(port io.ReadWriteCloser, log *slog.Logger) *MCU {
	if log == nil {
		log = slog.Default()
	}
	core.InitDriveCommands()
	return &MCU{
		port:     port,
		registry: core.GetGlobalRegistry(),
		log:      log,
		rx:       protocol.NewFifoBuffer(4 * protocol.PacketMaxBytes),
		payload:  protocol.NewScratchOutput(),
		frame:    protocol.NewScratchOutput(),
	}
}

// Connect opens the serial device and returns a link to it
func Connect(cfg *serial.Config, log *slog.Logger) (*MCU, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "flush")
	}
	return New(port, log), nil
}

// Close closes the underlying port
func (m *MCU) Close() error {
	return m.port.Close()
}

// BadPackets returns the number of received bytes dropped while
// resynchronising on CRC or length errors
func (m *MCU) BadPackets() int {
	return m.badPackets
}

// Send encodes a registered command and writes it as one packet
func (m *MCU) Send(name string, args ...int32) error {
	m.payload.Reset()
	if err := m.registry.Encode(m.payload, name, args...); err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	if m.payload.Overflowed() {
		return errors.Wrapf(protocol.ErrPacketTooLarge, "encode %s", name)
	}

	m.frame.Reset()
	if err := protocol.AppendPacket(m.frame, m.payload.Result()); err != nil {
		return errors.Wrapf(err, "frame %s", name)
	}
	if _, err := m.port.Write(m.frame.Result()); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	m.log.Debug("sent", slog.String("command", name), slog.Int("bytes", m.frame.CurPosition()))
	return nil
}

// SendCarControl sends one control record. A throttle outside [0, 1] or
// not finite is sent as core.NoSignalThrottle rather than rounded onto
// the valid range; a non-finite steer is sent as zero.
func (m *MCU) SendCarControl(throttle, steer float32) error {
	if !core.ValidDuty(throttle) {
		m.log.Debug("throttle out of range, sending stop", slog.Float64("throttle", float64(throttle)))
		throttle = core.NoSignalThrottle
	}
	if math.IsNaN(float64(steer)) || math.IsInf(float64(steer), 0) {
		steer = 0
	}
	return m.Send("car_control", protocol.ToFixed(throttle), protocol.ToFixed(steer))
}

// ReadMessage waits up to timeout for the next response. Corrupt packets
// are skipped one byte at a time until a valid packet lines up.
func (m *MCU) ReadMessage(timeout time.Duration) (*Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		msg, err := m.nextBuffered()
		if err != nil || msg != nil {
			return msg, err
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}

		n, err := m.port.Read(m.readBuf[:min(len(m.readBuf), m.rx.Free())])
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "read")
		}
		if n == 0 {
			// Serial reads time out with no data; back off briefly.
			time.Sleep(time.Millisecond)
			continue
		}
		m.rx.Write(m.readBuf[:n])
	}
}

// nextBuffered returns the next complete message already received, or
// nil when more bytes are needed.
func (m *MCU) nextBuffered() (*Message, error) {
	payload, dropped := protocol.NextPacket(m.rx)
	if dropped > 0 {
		m.badPackets += dropped
		m.log.Warn("dropped corrupt input", slog.Int("bytes", dropped))
	}
	if payload == nil {
		return nil, nil
	}
	return m.decode(payload)
}

// decode names a response payload's arguments from the registered format
func (m *MCU) decode(payload []byte) (*Message, error) {
	data := payload
	id, err := protocol.DecodeVLQUint(&data)
	if err != nil {
		return nil, errors.Wrap(err, "decode message id")
	}
	cmd, ok := m.registry.GetCommand(uint16(id))
	if !ok {
		return nil, errors.Errorf("unknown message id %d", id)
	}

	msg := &Message{Name: cmd.Name, Args: make(map[string]int32)}
	for _, field := range strings.Fields(cmd.Format) {
		name, _, _ := strings.Cut(field, "=")
		v, err := protocol.DecodeVLQInt(&data)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s.%s", cmd.Name, name)
		}
		msg.Args[name] = v
	}
	return msg, nil
}

// QueryStatus requests and waits for the drive status. Other responses
// arriving in between, such as sensor reports, are discarded.
func (m *MCU) QueryStatus(timeout time.Duration) (*DriveStatus, error) {
	if err := m.Send("get_drive_status"); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		msg, err := m.ReadMessage(remaining)
		if err != nil {
			return nil, err
		}
		if msg.Name != "drive_status" {
			m.log.Debug("skipping", slog.String("message", msg.Name))
			continue
		}
		return &DriveStatus{
			State:      core.BridgeState(msg.Args["state"]),
			Supervisor: core.SupervisorState(msg.Args["supervisor"]),
			Threshold:  uint8(msg.Args["threshold"]),
			Duty:       protocol.FromFixed(msg.Args["duty"]),
			Trips:      uint32(msg.Args["trips"]),
		}, nil
	}
}
