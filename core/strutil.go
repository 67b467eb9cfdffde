package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// fractionString formats a fraction with four decimals, e.g. "0.3000"
func fractionString(f float32) string {
	neg := f < 0
	if neg {
		f = -f
	}
	scaled := uint32(f*10000 + 0.5)
	frac := utoa(scaled % 10000)
	for len(frac) < 4 {
		frac = "0" + frac
	}
	s := utoa(scaled/10000) + "." + frac
	if neg {
		return "-" + s
	}
	return s
}
