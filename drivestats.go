package drivestats

import (
	"errors"
	"fmt"
)

const (
	// StandardHeaderSize - magic[4] + length u16.
	StandardHeaderSize = 6

	// SessionHeaderSize - on-disk size of a DCS1/DCS2 session header.
	SessionHeaderSize = 17

	// FruHeaderSize - on-disk size of a FRU1 header.
	FruHeaderSize = 63

	// DataHeaderSize - on-disk size of a DATA header (variant id included).
	DataHeaderSize = 7

	// FcopHeaderSize - on-disk size of an FCOP header.
	FcopHeaderSize = 128

	// MaxDataLength is the largest payload the producing tool could write.
	// Longer declared lengths are clamped to it.
	MaxDataLength = 2048

	// MaxOldFuelGaugeSize bounds the delimiter scan of a TIME record.
	MaxOldFuelGaugeSize = 512

	// legacyDataLengthAdjust converts a DCS0 data length hint into a
	// standard header length (data header + 4 byte trailer).
	legacyDataLengthAdjust = 0xb

	// The DCS1 write buffer dropped the last 12 bytes of fuel gauge records
	// longer than 200 bytes. Both values are legacy constants.
	oldWriteBufferThreshold = 200
	oldWriteBufferTrim      = 12
)

// ErrUnknownHeader - the stream holds a tag that is not a known header.
var ErrUnknownHeader = errors.New("unknown header")

// ErrTruncatedHeader - end of file was hit inside a header.
var ErrTruncatedHeader = errors.New("truncated header")

// ErrDataTooLarge - a data record length cannot fit the payload buffer.
var ErrDataTooLarge = errors.New("data length exceeds maximum buffer")

// ErrShortRecord - a buffer is too small for the fixed record decoded from it.
var ErrShortRecord = errors.New("record too short")

// Mask selects which parts of the stream are printed.
type Mask uint

const (
	// MaskSession - session headers
	MaskSession Mask = 1 << iota
	// MaskFru - FRU headers
	MaskFru
	// MaskDataHeader - data headers
	MaskDataHeader
	// MaskFormatted - decoded data payloads
	MaskFormatted
	// MaskRaw - hex dump of data payloads
	MaskRaw
	// MaskWriteAmp - write amplification summary per drive
	MaskWriteAmp
	// MaskFcop - fast cache over-provisioning blocks
	MaskFcop
	_
	// MaskDebug - debug diagnostics
	MaskDebug
)

const (
	// MaskHeaders - all header kinds.
	MaskHeaders = MaskSession | MaskFru | MaskDataHeader

	// DefaultMask - headers and formatted data.
	DefaultMask = MaskHeaders | MaskFormatted

	// RawMask - headers and raw data, the -r shorthand.
	RawMask = MaskHeaders | MaskRaw
)

// Has reports whether every bit of o is set in m.
func (m Mask) Has(o Mask) bool {
	return m&o == o
}

// Formatted reports whether payloads are decoded. Formatted output wins
// when both formatted and raw are requested.
func (m Mask) Formatted() bool {
	return m.Has(MaskFormatted)
}

// Raw reports whether payloads are hex dumped.
func (m Mask) Raw() bool {
	return m.Has(MaskRaw) && !m.Has(MaskFormatted)
}

// Counter is a drive counter that may not have been reported. The zero value
// is "not found".
type Counter struct {
	value uint64
	valid bool
}

// Set stores v and marks the counter as found.
func (c *Counter) Set(v uint64) {
	c.value = v
	c.valid = true
}

// Get returns the value and whether it was found.
func (c Counter) Get() (uint64, bool) {
	return c.value, c.valid
}

// Valid reports whether the counter was found.
func (c Counter) Valid() bool {
	return c.valid
}

func (c Counter) String() string {
	if !c.valid {
		return "NOT_FOUND"
	}

	return fmt.Sprintf("%d", c.value)
}

// WriteCounters are the host and NAND write counters of one log page.
type WriteCounters struct {
	HostWrites Counter
	NandWrites Counter
}

// DriveInfo accumulates per-drive counters between FRU headers.
type DriveInfo struct {
	Fru FruHeader
	// HaveFru is false until a FRU header has been seen.
	HaveFru bool

	Log2F WriteCounters
	Log30 WriteCounters
	Log31 WriteCounters
	Log37 WriteCounters
}

// NewDriveInfo returns a DriveInfo for the drive described by fru with all
// counters set to not found.
func NewDriveInfo(fru FruHeader) *DriveInfo {
	return &DriveInfo{Fru: fru, HaveFru: true}
}

// TLAPrefix returns the 9 character model prefix of the drive TLA.
func (d *DriveInfo) TLAPrefix() string {
	tla := d.Fru.TLA
	if len(tla) > tlaPrefixLen {
		tla = tla[:tlaPrefixLen]
	}

	return tla
}

const tlaPrefixLen = 9

// Variant is the data record payload format id.
type Variant uint8

const (
	// VariantSmartAttr - ATA style SMART attribute table
	VariantSmartAttr Variant = iota + 1
	// VariantFuelGauge - fuel gauge counter table
	VariantFuelGauge
	// VariantBms - background media scan summary
	VariantBms
	// VariantBms1 - background media scan summary, second generation
	VariantBms1
	// VariantErrorCounters - write/read/verify error counter log pages
	VariantErrorCounters
	// VariantSsdMedia - SSD media log page 0x11
	VariantSsdMedia
	// VariantInfoExceptions - informational exceptions log page 0x2F
	VariantInfoExceptions
	// VariantSmartData - vendor SMART log page 0x30
	VariantSmartData
	// VariantSmartData31 - vendor SMART log page 0x31
	VariantSmartData31
	// VariantVendorSmart - vendor specific SMART log page 0x37
	VariantVendorSmart
)

var variantNames = map[Variant]string{
	VariantSmartAttr:      "SMART_ATTR",
	VariantFuelGauge:      "FUEL_GAUGE",
	VariantBms:            "BMS",
	VariantBms1:           "BMS1",
	VariantErrorCounters:  "ERROR_COUNTERS",
	VariantSsdMedia:       "SSD_MEDIA",
	VariantInfoExceptions: "INFO_EXCEPTIONS",
	VariantSmartData:      "SMART_DATA",
	VariantSmartData31:    "SMART_DATA_31",
	VariantVendorSmart:    "VENDOR_SMART",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}

	return "UNKNOWN"
}

// Known reports whether v names a payload format.
func (v Variant) Known() bool {
	_, ok := variantNames[v]
	return ok
}
