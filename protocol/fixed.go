package protocol

// ToFixed converts a fractional value to its wire representation,
// rounding half away from zero.
func ToFixed(v float32) int32 {
	scaled := v * FixedScale
	if scaled < 0 {
		return int32(scaled - 0.5)
	}
	return int32(scaled + 0.5)
}

// FromFixed converts a wire value back to a fraction
func FromFixed(v int32) float32 {
	return float32(v) / FixedScale
}

// DecodeFixed reads a VLQ fixed-point integer as a fraction
func DecodeFixed(data *[]byte) (float32, error) {
	v, err := DecodeVLQInt(data)
	if err != nil {
		return 0, err
	}
	return FromFixed(v), nil
}
