package drivestats

// The stream mixes byte orders: header lengths and 2/4 byte fields are big
// endian while 6/8 byte drive counters are little endian. Every numeric
// field goes through these helpers so the order is explicit at each call.

// U16 decodes b[0:2].
func U16(b []byte, bigEndian bool) uint16 {
	return uint16(U64(b, bigEndian, 2))
}

// U32 decodes b[0:4].
func U32(b []byte, bigEndian bool) uint32 {
	return uint32(U64(b, bigEndian, 4))
}

// U64 decodes the first n bytes of b, n <= 8.
func U64(b []byte, bigEndian bool, n int) uint64 {
	var v uint64

	if bigEndian {
		for i := 0; i < n; i++ {
			v = v<<8 | uint64(b[i])
		}

		return v
	}

	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}

	return v
}

// PutU16 encodes v into b[0:2].
func PutU16(b []byte, v uint16, bigEndian bool) {
	PutU64(b, uint64(v), bigEndian, 2)
}

// PutU32 encodes v into b[0:4].
func PutU32(b []byte, v uint32, bigEndian bool) {
	PutU64(b, uint64(v), bigEndian, 4)
}

// PutU64 encodes the low n bytes of v into b[0:n].
func PutU64(b []byte, v uint64, bigEndian bool, n int) {
	for i := 0; i < n; i++ {
		shift := uint(8 * i)
		if bigEndian {
			b[n-1-i] = byte(v >> shift)
		} else {
			b[i] = byte(v >> shift)
		}
	}
}
