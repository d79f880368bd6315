package drivestats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Timestamp - 6 byte record time: years since 1900, month, day, hour,
// minute, second.
type Timestamp [6]byte

// TimestampSize - encoded size of a Timestamp.
const TimestampSize = 6

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d/%02d/%04d %02d:%02d:%02d",
		t[1], t[2], 1900+int(t[0]), t[3], t[4], t[5])
}

// StandardHeader - the common prefix of every modern record.
type StandardHeader struct {
	Magic [4]byte
	// Length is the total length of the header and the payload after it.
	Length uint16
}

func (h StandardHeader) put(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	PutU16(buf[4:6], h.Length, true)
}

func (h *StandardHeader) get(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.Length = U16(buf[4:6], true)
}

// MagicString renders the magic with non-printable bytes escaped.
func (h StandardHeader) MagicString() string {
	var sb strings.Builder

	for _, b := range h.Magic {
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\x%02x", b)
		}
	}

	return sb.String()
}

func checkSize(buf []byte, size int, what string) error {
	if len(buf) < size {
		return errors.Wrapf(ErrShortRecord, "%s needs %d bytes, have %d", what, size, len(buf))
	}

	return nil
}

// SessionHeader - marks the start of a logging session.
type SessionHeader struct {
	StandardHeader
	ToolID      uint8
	FormatMajor uint8
	FormatMinor uint8
	ToolMajor   uint8
	ToolMinor   uint8
	Time        Timestamp
}

// MarshalBinary encodes the header in its SessionHeaderSize layout.
func (h SessionHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SessionHeaderSize)
	h.put(buf)
	buf[6] = h.ToolID
	buf[7] = h.FormatMajor
	buf[8] = h.FormatMinor
	buf[9] = h.ToolMajor
	buf[10] = h.ToolMinor
	copy(buf[11:17], h.Time[:])

	return buf, nil
}

// UnmarshalBinary decodes a SessionHeaderSize buffer.
func (h *SessionHeader) UnmarshalBinary(buf []byte) error {
	if err := checkSize(buf, SessionHeaderSize, "session header"); err != nil {
		return err
	}

	h.get(buf)
	h.ToolID = buf[6]
	h.FormatMajor = buf[7]
	h.FormatMinor = buf[8]
	h.ToolMajor = buf[9]
	h.ToolMinor = buf[10]
	copy(h.Time[:], buf[11:17])

	return nil
}

func (h SessionHeader) String() string {
	return fmt.Sprintf("SESSION: %s tool_id=%d format=%d.%d tool=%d.%d time=%s",
		h.MagicString(), h.ToolID, h.FormatMajor, h.FormatMinor,
		h.ToolMajor, h.ToolMinor, h.Time)
}

// FruHeader - identifies the drive the following data records belong to.
type FruHeader struct {
	StandardHeader
	FruNumber uint32
	Bus       uint8
	Enclosure uint8
	Disk      uint8
	Serial    string
	TLA       string
	FwRev     string
	Time      Timestamp
}

const (
	fruSerialLen = 21
	fruTLALen    = 13
	fruFwRevLen  = 10
)

// MarshalBinary encodes the header in its FruHeaderSize layout. Strings
// longer than their field are truncated.
func (h FruHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, FruHeaderSize)
	h.put(buf)
	PutU32(buf[6:10], h.FruNumber, true)
	buf[10] = h.Bus
	buf[11] = h.Enclosure
	buf[12] = h.Disk
	putString(buf[13:34], h.Serial)
	putString(buf[34:47], h.TLA)
	putString(buf[47:57], h.FwRev)
	copy(buf[57:63], h.Time[:])

	return buf, nil
}

// UnmarshalBinary decodes a FruHeaderSize buffer.
func (h *FruHeader) UnmarshalBinary(buf []byte) error {
	if err := checkSize(buf, FruHeaderSize, "fru header"); err != nil {
		return err
	}

	h.get(buf)
	h.FruNumber = U32(buf[6:10], true)
	h.Bus = buf[10]
	h.Enclosure = buf[11]
	h.Disk = buf[12]
	h.Serial = CString(buf[13 : 13+fruSerialLen])
	h.TLA = CString(buf[34 : 34+fruTLALen])
	h.FwRev = CString(buf[47 : 47+fruFwRevLen])
	copy(h.Time[:], buf[57:63])

	return nil
}

func (h FruHeader) String() string {
	return fmt.Sprintf("FRU: fru=%d bed=%d_%d_%d sn=%s tla=%s fw=%s time=%s",
		h.FruNumber, h.Bus, h.Enclosure, h.Disk, h.Serial, h.TLA, h.FwRev, h.Time)
}

// DataHeader - precedes a variant payload of Length-DataHeaderSize bytes.
type DataHeader struct {
	StandardHeader
	Variant Variant
}

// MarshalBinary encodes the header in its DataHeaderSize layout.
func (h DataHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DataHeaderSize)
	h.put(buf)
	buf[6] = byte(h.Variant)

	return buf, nil
}

// UnmarshalBinary decodes a DataHeaderSize buffer.
func (h *DataHeader) UnmarshalBinary(buf []byte) error {
	if err := checkSize(buf, DataHeaderSize, "data header"); err != nil {
		return err
	}

	h.get(buf)
	h.Variant = Variant(buf[6])

	return nil
}

func (h DataHeader) String() string {
	return fmt.Sprintf("DATA: variant=0x%02x %s length=%d", uint8(h.Variant), h.Variant, h.Length)
}

// PayloadLength returns the number of payload bytes to read after the
// header. clamped is set when the declared length was cut to MaxDataLength.
// oldWriteBuffer is true while inside a DCS1 session.
func (h DataHeader) PayloadLength(oldWriteBuffer bool) (n int, clamped bool, err error) {
	n = int(h.Length) - DataHeaderSize

	if n > MaxDataLength {
		n = MaxDataLength
		clamped = true
	}

	if h.Variant == VariantFuelGauge && oldWriteBuffer && n > oldWriteBufferThreshold {
		n -= oldWriteBufferTrim
	}

	if n < 0 || n > MaxDataLength {
		return n, clamped, errors.Wrapf(ErrDataTooLarge,
			"variant 0x%02x declared length %d", uint8(h.Variant), h.Length)
	}

	return n, clamped, nil
}

// FcopHeader - fast cache over-provisioning block, a fixed text record.
type FcopHeader struct {
	StandardHeader
	Time Timestamp
	Text string
}

const fcopTextLen = FcopHeaderSize - StandardHeaderSize - TimestampSize

// MarshalBinary encodes the header in its FcopHeaderSize layout.
func (h FcopHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, FcopHeaderSize)
	h.put(buf)
	copy(buf[6:12], h.Time[:])
	putString(buf[12:], h.Text)

	return buf, nil
}

// UnmarshalBinary decodes a FcopHeaderSize buffer.
func (h *FcopHeader) UnmarshalBinary(buf []byte) error {
	if err := checkSize(buf, FcopHeaderSize, "fcop header"); err != nil {
		return err
	}

	h.get(buf)
	copy(h.Time[:], buf[6:12])
	h.Text = CString(buf[12 : 12+fcopTextLen])

	return nil
}

func (h FcopHeader) String() string {
	return fmt.Sprintf("FCOP: time=%s\n  %s", h.Time, h.Text)
}

// CString returns the bytes of buf up to the first NUL with trailing
// spaces removed.
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}

	return strings.TrimRight(string(buf), " ")
}

func putString(buf []byte, s string) {
	n := copy(buf, s)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}
