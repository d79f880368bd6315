package drivestats

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HeaderKind - classification of a record tag.
type HeaderKind int

const (
	// KindUnknown - unrecognized or corrupt tag.
	KindUnknown HeaderKind = iota

	// KindEOF - clean end of the stream before a new record.
	KindEOF

	// KindSession - DCS2 session header.
	KindSession

	// KindSessionOldWriteBuffer - DCS1 session header. Data written in this
	// session used the old write buffer layout.
	KindSessionOldWriteBuffer

	// KindSessionDCS0 - legacy 14 byte session header "DCS\x01".
	KindSessionDCS0

	// KindFru - FRU1 header.
	KindFru

	// KindFruDCS0 - legacy FRU header without magic, prefixed by 00 3E.
	KindFruDCS0

	// KindData - DATA header.
	KindData

	// KindDataDCS0 - legacy data header 01 02 00.
	KindDataDCS0

	// KindOldFuelGauge - TIME record, three newline terminated text fields.
	KindOldFuelGauge

	// KindFcop - FCOP fast cache over-provisioning header.
	KindFcop
)

func (k HeaderKind) String() string {
	return []string{
		"UNKNOWN", "EOF", "SESSION", "SESSION_DCS1", "SESSION_DCS0",
		"FRU", "FRU_DCS0", "DATA", "DATA_DCS0", "OLD_FUEL_GAUGE", "FCOP",
	}[k]
}

// IsSession reports whether k is any session header kind.
func (k HeaderKind) IsSession() bool {
	return k == KindSession || k == KindSessionOldWriteBuffer || k == KindSessionDCS0
}

// IsFru reports whether k is any FRU header kind.
func (k HeaderKind) IsFru() bool {
	return k == KindFru || k == KindFruDCS0
}

// IsData reports whether k is any data header kind.
func (k HeaderKind) IsData() bool {
	return k == KindData || k == KindDataDCS0
}

// Classify maps a record tag to its HeaderKind. tag is the 4 bytes read at
// a record boundary, or 3 bytes for the legacy 01 02 00 data marker.
func Classify(tag []byte) HeaderKind {
	if len(tag) < 3 {
		return KindUnknown
	}

	t := string(tag)

	switch {
	case tag[0] == 0x01 && tag[1] == 0x02 && tag[2] == 0x00:
		return KindDataDCS0
	case len(tag) != 4:
		return KindUnknown
	case t == "DCS\x01":
		return KindSessionDCS0
	case tag[0] == 0x00 && tag[1] == 0x3e:
		return KindFruDCS0
	case t == "DCS1":
		return KindSessionOldWriteBuffer
	case t == "DCS2":
		return KindSession
	case t == "FRU1":
		return KindFru
	case t == "DATA":
		return KindData
	case t == "TIME":
		return KindOldFuelGauge
	case t == "FCOP":
		return KindFcop
	default:
		return KindUnknown
	}
}

// isLeadByte - bytes that may start a record. Anything else between
// records is junk some platforms leave behind.
func isLeadByte(b byte) bool {
	switch b {
	case 0x00, 0x01, 0x02,
		'A', 'C', 'D', 'E', 'F', 'I', 'M', 'O', 'P', 'R', 'S', 'T', 'U':
		return true
	}

	return false
}

// Header is one classified record header. Exactly one of the record
// pointers (or OldFuelGauge) is set, matching Kind.
type Header struct {
	Kind   HeaderKind
	Offset int64
	Tag    []byte

	Session      *SessionHeader
	Fru          *FruHeader
	Data         *DataHeader
	Fcop         *FcopHeader
	OldFuelGauge []byte
}

// Reader walks the records of a drive stats stream.
type Reader struct {
	r      *bufio.Reader
	offset int64
	log    logrus.FieldLogger
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   bufio.NewReader(r),
		log: logrus.StandardLogger(),
	}
}

// SetLogger sets the logger used for diagnostics.
func (r *Reader) SetLogger(l logrus.FieldLogger) {
	r.log = l
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.offset++
	}

	return b, err
}

func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)

	return err
}

func truncated(err error, what string, offset int64) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncatedHeader, "%s at offset %d", what, offset)
	}

	return errors.Wrapf(err, "reading %s at offset %d", what, offset)
}

// Next classifies and reads the next record header. At the end of the
// stream it returns a KindEOF header and a nil error. Any malformed header
// is returned as an error wrapping ErrUnknownHeader or ErrTruncatedHeader;
// for an unknown tag the header is returned as well.
//
//nolint:funlen,gocyclo
func (r *Reader) Next() (*Header, error) {
	var lead byte
	var err error

	skipped := 0

	for {
		lead, err = r.readByte()
		if err == io.EOF {
			return &Header{Kind: KindEOF, Offset: r.offset}, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading header at offset %d", r.offset)
		}

		if isLeadByte(lead) {
			break
		}

		skipped++
	}

	start := r.offset - 1

	if skipped > 0 {
		r.log.WithField("offset", start).Debugf("skipped %d junk bytes before header", skipped)
	}

	tag := []byte{lead}

	for len(tag) < 4 {
		if Classify(tag) == KindDataDCS0 {
			break
		}

		c, err := r.readByte()
		if err != nil {
			return nil, truncated(err, "header tag", start)
		}

		tag = append(tag, c)
	}

	hdr := &Header{Kind: Classify(tag), Offset: start, Tag: tag}

	switch hdr.Kind {
	case KindSession, KindSessionOldWriteBuffer:
		buf := make([]byte, SessionHeaderSize)
		copy(buf, tag)

		if err = r.readFull(buf[len(tag):]); err != nil {
			return nil, truncated(err, "session header", start)
		}

		hdr.Session = &SessionHeader{}
		err = hdr.Session.UnmarshalBinary(buf)

	case KindSessionDCS0:
		// "DCS" + tool id, then no length field.
		buf := make([]byte, SessionHeaderSize)
		copy(buf, "DCS0")
		PutU16(buf[4:6], SessionHeaderSize, true)
		buf[6] = tag[3]

		if err = r.readFull(buf[7:]); err != nil {
			return nil, truncated(err, "dcs0 session header", start)
		}

		hdr.Session = &SessionHeader{}
		err = hdr.Session.UnmarshalBinary(buf)

	case KindFru:
		buf := make([]byte, FruHeaderSize)
		copy(buf, tag)

		if err = r.readFull(buf[len(tag):]); err != nil {
			return nil, truncated(err, "fru header", start)
		}

		hdr.Fru = &FruHeader{}
		err = hdr.Fru.UnmarshalBinary(buf)

	case KindFruDCS0:
		// the two bytes after 00 3E already belong to the fru body.
		buf := make([]byte, FruHeaderSize)
		copy(buf, "FRU1")
		PutU16(buf[4:6], FruHeaderSize, true)
		buf[6], buf[7] = tag[2], tag[3]

		if err = r.readFull(buf[8:]); err != nil {
			return nil, truncated(err, "dcs0 fru header", start)
		}

		hdr.Fru = &FruHeader{}
		err = hdr.Fru.UnmarshalBinary(buf)

	case KindData:
		buf := make([]byte, DataHeaderSize)
		copy(buf, tag)

		if err = r.readFull(buf[len(tag):]); err != nil {
			return nil, truncated(err, "data header", start)
		}

		hdr.Data = &DataHeader{}
		err = hdr.Data.UnmarshalBinary(buf)

	case KindDataDCS0:
		hint := U16(tag[1:3], true)
		buf := make([]byte, DataHeaderSize)
		copy(buf, "DATA")
		PutU16(buf[4:6], hint+legacyDataLengthAdjust, true)

		if err = r.readFull(buf[6:]); err != nil {
			return nil, truncated(err, "dcs0 data header", start)
		}

		hdr.Data = &DataHeader{}
		err = hdr.Data.UnmarshalBinary(buf)

	case KindOldFuelGauge:
		hdr.OldFuelGauge, err = r.readOldFuelGauge(start)

	case KindFcop:
		buf := make([]byte, FcopHeaderSize)
		copy(buf, tag)

		if err = r.readFull(buf[len(tag):]); err != nil {
			return nil, truncated(err, "fcop header", start)
		}

		hdr.Fcop = &FcopHeader{}
		err = hdr.Fcop.UnmarshalBinary(buf)

	default:
		return hdr, errors.Wrapf(ErrUnknownHeader, "tag % x at offset %d", tag, start)
	}

	if err != nil {
		return nil, err
	}

	return hdr, nil
}

const oldFuelGaugeFields = 3

func (r *Reader) readOldFuelGauge(start int64) ([]byte, error) {
	buf := make([]byte, 0, MaxOldFuelGaugeSize)
	newlines := 0

	for newlines < oldFuelGaugeFields {
		if len(buf) == MaxOldFuelGaugeSize {
			return nil, errors.Wrapf(ErrTruncatedHeader,
				"old fuel gauge record at offset %d exceeds %d bytes", start, MaxOldFuelGaugeSize)
		}

		c, err := r.readByte()
		if err != nil {
			return nil, truncated(err, "old fuel gauge record", start)
		}

		buf = append(buf, c)

		if c == '\n' {
			newlines++
		}
	}

	return buf, nil
}

// OldFuelGaugeFields splits the bytes of a TIME record into its three text
// fields.
func OldFuelGaugeFields(raw []byte) []string {
	fields := strings.SplitN(string(raw), "\n", oldFuelGaugeFields+1)
	if len(fields) > oldFuelGaugeFields {
		fields = fields[:oldFuelGaugeFields]
	}

	for i, f := range fields {
		fields[i] = strings.Trim(f, "\x00\r ")
	}

	return fields
}

// ReadPayload reads up to n payload bytes. A short read at the end of the
// stream is not an error; the caller compares the length it got.
func (r *Reader) ReadPayload(n int) ([]byte, error) {
	buf := make([]byte, n)

	got, err := io.ReadFull(r.r, buf)
	r.offset += int64(got)

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return buf[:got], nil
	} else if err != nil {
		return buf[:got], errors.Wrapf(err, "reading %d byte payload", n)
	}

	return buf, nil
}
