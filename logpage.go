package drivestats

const (
	// LogPageHeaderSize - page code, subpage, page length u16.
	LogPageHeaderSize = 4

	// LogParamHeaderSize - code u16, control u8, length u8.
	LogParamHeaderSize = 4
)

// LogPageParam is one parameter of a log page.
type LogPageParam struct {
	Code    uint16
	Control uint8
	Len     uint8
	Value   uint64
	// Supported is false when Len is neither 4 nor 8; Value is then 0.
	Supported bool
}

// DecodeLogPageParam decodes the parameter at the start of b. 4 byte values
// are big endian, 8 byte values little endian.
func DecodeLogPageParam(b []byte) LogPageParam {
	p := LogPageParam{
		Code:    U16(b[0:2], true),
		Control: b[2],
		Len:     b[3],
	}

	switch p.Len {
	case 4:
		p.Value = uint64(U32(b[4:8], true))
		p.Supported = true
	case 8:
		p.Value = U64(b[4:12], false, 8)
		p.Supported = true
	}

	return p
}

// LogPageIterator walks the parameters of a log page payload. It is not
// restartable; create a new one to walk the same buffer again.
type LogPageIterator struct {
	buf       []byte
	bound     int
	index     int
	remaining int
	started   bool
	done      bool
}

// NewLogPageIterator returns an iterator over the first length bytes of buf,
// starting with the 4 byte page header.
func NewLogPageIterator(buf []byte, length int) *LogPageIterator {
	bound := length
	if bound > len(buf) {
		bound = len(buf)
	}

	return &LogPageIterator{buf: buf, bound: bound, remaining: length}
}

// Next returns the next parameter. ok is false once the page is exhausted
// or the next parameter would cross the end of the buffer.
func (it *LogPageIterator) Next() (param LogPageParam, ok bool) {
	if it.done {
		return param, false
	}

	var step int

	if !it.started {
		it.started = true
		step = LogPageHeaderSize
	} else {
		step = int(it.buf[it.index+3]) + LogParamHeaderSize
	}

	it.remaining -= step
	it.index += step

	if it.remaining <= 0 || !it.fits() {
		it.done = true
		return param, false
	}

	return DecodeLogPageParam(it.buf[it.index:]), true
}

// fits reports whether the whole parameter at index lies inside the bound.
func (it *LogPageIterator) fits() bool {
	if it.index+LogParamHeaderSize > it.bound {
		return false
	}

	size := LogParamHeaderSize + int(it.buf[it.index+3])

	return it.index+size <= it.bound
}
