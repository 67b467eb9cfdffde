//go:build atmega328p

package main

import (
	"machine"
	"time"

	"rcvip/core"
	"rcvip/protocol"
)

var (
	// Buffers for communication
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput

	// Debug counters
	messagesReceived uint32
	droppedBytes     uint32
	msgerrors        uint32

	bootTime time.Time
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})

	// Bridge lines first: every gate must be held low before anything else
	core.SetLineDriver(NewPortLines())
	core.SetCycleTimer(NewTimer2())

	core.InitDriveCommands()

	cfg := core.DefaultDriveConfig()
	drive, err := core.InitMotorDrive(cfg)
	if err != nil {
		halt()
	}

	inputBuffer = protocol.NewFifoBuffer(128)
	outputBuffer = protocol.NewScratchOutput()
	core.SetResponder(writePacket)

	poller := core.NewSensorPoller(cfg, NewDividerSensor(machine.ADC3), NewIMU(), drive)

	bootTime = time.Now()
	UpdateSystemTime()
	drive.Start(core.Millis())
	poller.Start(core.Millis())

	for {
		UpdateSystemTime()
		readSerial()
		core.ProcessTimers()
	}
}

// UpdateSystemTime publishes milliseconds since boot to the core clock
func UpdateSystemTime() {
	core.SetMillis(uint32(time.Since(bootTime).Milliseconds()))
}

// readSerial drains the UART and dispatches every complete packet
func readSerial() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			msgerrors++
			break
		}
		if !inputBuffer.WriteByte(b) {
			// Buffer full - drop input, the host resends on the next tick
			msgerrors++
			inputBuffer.Reset()
			break
		}
	}

	for {
		payload, dropped := protocol.NextPacket(inputBuffer)
		droppedBytes += uint32(dropped)
		if payload == nil {
			return
		}
		messagesReceived++
		if err := core.DispatchPayload(payload); err != nil {
			msgerrors++
		}
	}
}

// writePacket frames a response payload onto the UART
func writePacket(payload []byte) {
	outputBuffer.Reset()
	if err := protocol.AppendPacket(outputBuffer, payload); err != nil {
		msgerrors++
		return
	}
	if _, err := machine.Serial.Write(outputBuffer.Result()); err != nil {
		msgerrors++
	}
}

// halt parks the firmware with the bridge lines low
func halt() {
	if drive := core.GetMotorDrive(); drive != nil {
		drive.Duty.Disable()
	}
	for {
		time.Sleep(time.Second)
	}
}
