package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketRoundTrip(t *testing.T) {
	out := NewScratchOutput()
	payload := []byte{3, 0x4E, 0x10, 0x00}
	require.NoError(t, AppendPacket(out, payload))
	require.NoError(t, AppendPacket(out, []byte{7}))

	data := out.Result()
	got, err := ReadPacket(&data)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = ReadPacket(&data)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, got)
	assert.Empty(t, data)
}

func TestPacketIncompleteLeavesData(t *testing.T) {
	out := NewScratchOutput()
	require.NoError(t, AppendPacket(out, []byte{1, 2, 3}))
	full := out.Result()

	for n := 0; n < len(full); n++ {
		data := full[:n]
		_, err := ReadPacket(&data)
		assert.ErrorIs(t, err, ErrIncomplete, "prefix of %d bytes", n)
		assert.Len(t, data, n)
	}
}

func TestPacketBadCRC(t *testing.T) {
	out := NewScratchOutput()
	require.NoError(t, AppendPacket(out, []byte{1, 2, 3}))
	data := append([]byte(nil), out.Result()...)
	data[2] ^= 0xFF

	before := len(data)
	_, err := ReadPacket(&data)
	assert.ErrorIs(t, err, ErrBadCRC)
	assert.Len(t, data, before)
}

func TestPacketTooLarge(t *testing.T) {
	out := NewScratchOutput()
	assert.ErrorIs(t, AppendPacket(out, make([]byte, MessageMax+1)), ErrPacketTooLarge)

	out.Reset()
	EncodeVLQUint(out, MessageMax+1)
	data := out.Result()
	_, err := ReadPacket(&data)
	assert.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestFixedPoint(t *testing.T) {
	assert.Equal(t, int32(5000), ToFixed(0.5))
	assert.Equal(t, int32(-1000), ToFixed(-0.1))
	assert.Equal(t, int32(15000), ToFixed(1.5))
	assert.InDelta(t, 0.3, FromFixed(ToFixed(0.3)), 1e-6)

	out := NewScratchOutput()
	EncodeVLQInt(out, ToFixed(1.0))
	data := out.Result()
	v, err := DecodeFixed(&data)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), v)
}

func TestScratchOutputOverflow(t *testing.T) {
	out := NewScratchOutput()
	out.Output(make([]byte, PacketMaxBytes))
	assert.False(t, out.Overflowed())
	out.Output([]byte{1})
	assert.True(t, out.Overflowed())
	out.Reset()
	assert.False(t, out.Overflowed())
	assert.Equal(t, 0, out.CurPosition())
}

func TestFifoBufferWrap(t *testing.T) {
	f := NewFifoBuffer(8)
	assert.Equal(t, 5, f.Write([]byte{1, 2, 3, 4, 5}))
	f.Pop(4)
	assert.Equal(t, 6, f.Write([]byte{6, 7, 8, 9, 10, 11}))
	assert.Equal(t, []byte{5, 6, 7, 8, 9, 10, 11}, f.Data())
	assert.Equal(t, 0, f.Free())
	assert.False(t, f.WriteByte(12))
	f.Reset()
	assert.Equal(t, 0, f.Available())
}

func TestNextPacketResynchronises(t *testing.T) {
	out := NewScratchOutput()
	require.NoError(t, AppendPacket(out, []byte{1, 2, 3}))
	require.NoError(t, AppendPacket(out, []byte{9, 9}))
	stream := out.Result()
	first := len(stream) - 5

	f := NewFifoBuffer(32)
	f.Write([]byte{0x7F, 0x50})
	f.Write(stream[:first+2])

	payload, dropped := NextPacket(f)
	assert.Equal(t, []byte{1, 2, 3}, payload)
	assert.Equal(t, 2, dropped)

	payload, dropped = NextPacket(f)
	assert.Nil(t, payload)
	assert.Zero(t, dropped)
	assert.Equal(t, 2, f.Available())

	f.Write(stream[first+2:])
	payload, _ = NextPacket(f)
	assert.Equal(t, []byte{9, 9}, payload)
	assert.Zero(t, f.Available())
}

func TestNextPacketAcrossWrap(t *testing.T) {
	f := NewFifoBuffer(16)
	f.Write(make([]byte, 12))
	f.Pop(12)

	out := NewScratchOutput()
	require.NoError(t, AppendPacket(out, []byte{4, 5, 6, 7, 8}))
	require.Equal(t, len(out.Result()), f.Write(out.Result()))

	payload, dropped := NextPacket(f)
	assert.Equal(t, []byte{4, 5, 6, 7, 8}, payload)
	assert.Zero(t, dropped)
}
