// Package protocol implements the payload encoding shared by the rcvip
// firmware and its host tools: VLQ integers, fixed-point values and
// CRC-checked length-prefixed packets.
package protocol

// Version is the wire protocol version shared by firmware and host tools
const Version = "0.3.0"

// Protocol constants
const (
	MessageMax     = 64 // Maximum payload size; the ATmega328P has 2KB of RAM
	PacketTrailer  = 2  // CRC16, big endian
	PacketMaxBytes = MessageMax + PacketTrailer + 2

	// FixedScale is the fixed-point scale used for fractional arguments
	// (throttle, steering angle) on the wire.
	FixedScale = 10000
)
