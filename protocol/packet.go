package protocol

import "errors"

var (
	ErrIncomplete     = errors.New("incomplete packet")
	ErrBadCRC         = errors.New("packet CRC mismatch")
	ErrPacketTooLarge = errors.New("packet payload too large")
)

// AppendPacket writes payload as a packet: VLQ length, payload, CRC16.
func AppendPacket(output OutputBuffer, payload []byte) error {
	if len(payload) > MessageMax {
		return ErrPacketTooLarge
	}
	crc := CRC16(payload)
	EncodeVLQBytes(output, payload)
	output.Output([]byte{byte(crc >> 8), byte(crc)})
	return nil
}

// ReadPacket decodes one packet from the front of data and advances data
// past it. On ErrIncomplete data is left untouched so the caller can wait
// for more bytes. On ErrBadCRC or ErrPacketTooLarge data is also left
// untouched; the caller discards one byte and retries to resynchronise.
func ReadPacket(data *[]byte) ([]byte, error) {
	rest := *data
	length, err := DecodeVLQUint(&rest)
	if err == ErrBufferTooSmall {
		return nil, ErrIncomplete
	}
	if err != nil {
		return nil, err
	}
	if length > MessageMax {
		return nil, ErrPacketTooLarge
	}
	if len(rest) < int(length)+PacketTrailer {
		return nil, ErrIncomplete
	}

	payload := rest[:length]
	crc := uint16(rest[length])<<8 | uint16(rest[length+1])
	if CRC16(payload) != crc {
		return nil, ErrBadCRC
	}

	*data = rest[length+PacketTrailer:]
	return payload, nil
}

// NextPacket extracts the next complete packet from the front of f. Bytes
// that cannot start a valid packet are discarded one at a time and counted
// in dropped. A nil payload means more data is needed. The payload aliases
// the FIFO storage and is valid until the next Write.
func NextPacket(f *FifoBuffer) (payload []byte, dropped int) {
	for f.Available() > 0 {
		data := f.Data()
		before := len(data)
		p, err := ReadPacket(&data)
		switch err {
		case nil:
			f.Pop(before - len(data))
			return p, dropped
		case ErrIncomplete:
			return nil, dropped
		default:
			f.Pop(1)
			dropped++
		}
	}
	return nil, dropped
}
