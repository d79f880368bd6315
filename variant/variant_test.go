package variant

import (
	"bytes"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"machinerun.io/drivestats"
	"machinerun.io/drivestats/family"
)

const (
	buckhornTLA = "005050112"
	serial      = "ABC123"
)

func param(code uint16, plen uint8, value uint64) []byte {
	b := make([]byte, drivestats.LogParamHeaderSize+int(plen))
	drivestats.PutU16(b[0:2], code, true)
	b[3] = plen

	switch plen {
	case 4:
		drivestats.PutU32(b[4:8], uint32(value), true)
	case 8:
		drivestats.PutU64(b[4:12], value, false, 8)
	}

	return b
}

func page(code byte, params ...[]byte) []byte {
	b := []byte{code, 0, 0, 0}
	for _, p := range params {
		b = append(b, p...)
	}

	drivestats.PutU16(b[2:4], uint16(len(b)-drivestats.LogPageHeaderSize), true)

	return b
}

func newContext(mask drivestats.Mask, tla string) (*Context, *bytes.Buffer) {
	out := &bytes.Buffer{}
	ctx := &Context{
		Out:      out,
		Mask:     mask,
		Drive:    drivestats.NewDriveInfo(drivestats.FruHeader{Serial: serial, TLA: tla}),
		Families: family.NewClassifier(family.Default()),
	}

	return ctx, out
}

func TestDecodeUnknownVariant(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)

	Decode(ctx, drivestats.Variant(0), []byte{0xaa})
	assert.Equal(t, "WARN: unknown data variant 0x00, not formatted\n", out.String())
}

func TestDecodeRaw(t *testing.T) {
	ctx, out := newContext(drivestats.RawMask, buckhornTLA)
	payload := page(0x30, param(paramHostWrites, 8, 42))

	Decode(ctx, drivestats.VariantSmartData, payload)

	assert.Equal(t, drivestats.HexDump(payload, "  "), out.String())

	host, ok := ctx.Drive.Log30.HostWrites.Get()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), host)
}

func TestDecodeSmartData(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)

	Decode(ctx, drivestats.VariantSmartData, page(0x30,
		param(0x0001, 4, 1234),
		param(paramHostWrites, 8, 6553600),
		param(paramNandWrites, 8, 1228800)))

	expected := "" +
		"  SMART DATA (page 0x30)\n" +
		"  0x0001 Power on hours                       1234\n" +
		"  0x00f7 Host sectors written                 6553600\n" +
		"  0x00f8 NAND pages written                   1228800\n"
	assert.Equal(t, expected, out.String())
	assert.False(t, ctx.Drive.Log31.HostWrites.Valid())
}

func TestWriteAmpBuckhorn(t *testing.T) {
	ctx, out := newContext(drivestats.MaskWriteAmp, buckhornTLA)

	Decode(ctx, drivestats.VariantSmartData, page(0x30,
		param(paramHostWrites, 8, 6553600),
		param(paramNandWrites, 8, 1228800)))
	assert.Empty(t, out.String())

	ReportWriteAmp(ctx)

	expected := "" +
		"WA: sn=ABC123 tla=005050112 family=BUCKHORN\n" +
		"  HOST_WRITES_32MB: 100\n" +
		"  NAND_WRITES_32MB: 300\n" +
		"  WRITE_AMPLIFICATION: 3.00\n"
	assert.Equal(t, expected, out.String())
}

func TestWriteAmpNotFound(t *testing.T) {
	ctx, out := newContext(drivestats.MaskWriteAmp, buckhornTLA)

	Decode(ctx, drivestats.VariantSmartData, page(0x30, param(0x0001, 4, 1)))

	assert.False(t, ctx.Drive.Log30.HostWrites.Valid())
	assert.False(t, ctx.Drive.Log30.NandWrites.Valid())

	ReportWriteAmp(ctx)

	assert.Equal(t, ""+
		"WA: sn=ABC123 tla=005050112 family=BUCKHORN\n"+
		"WARN: HOST_WRITES not found for sn ABC123\n"+
		"WARN: NAND_WRITES not found for sn ABC123\n", out.String())
	assert.NotContains(t, out.String(), "_32MB")
}

func TestWriteAmpFamilies(t *testing.T) {
	tables := family.Default()

	ctx, out := newContext(drivestats.MaskWriteAmp, tables.RDX[0])
	Decode(ctx, drivestats.VariantSmartData31, page(0x31,
		param(paramHostWrites, 8, 10),
		param(paramNandWrites, 8, 25)))
	ReportWriteAmp(ctx)
	assert.Contains(t, out.String(), "family=RDX\n  HOST_WRITES_32MB: 10\n  NAND_WRITES_32MB: 25\n  WRITE_AMPLIFICATION: 2.50\n")

	ctx, out = newContext(drivestats.MaskWriteAmp, "999999999")
	ReportWriteAmp(ctx)
	assert.Equal(t, ""+
		"WA: sn=ABC123 tla=999999999 family=UNKNOWN\n"+
		"WARN: write amplification not supported for tla 999999999\n", out.String())
}

func TestWriteAmpSilent(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)
	ReportWriteAmp(ctx)
	assert.Empty(t, out.String())

	ctx, out = newContext(drivestats.MaskWriteAmp, buckhornTLA)
	ctx.Drive = &drivestats.DriveInfo{}
	ReportWriteAmp(ctx)
	assert.Empty(t, out.String())
}

func TestUnitConversion(t *testing.T) {
	rng := rand.New(rand.NewSource(32)) //nolint:gosec
	unit := big.NewInt(ReportUnit)

	for i := 0; i < 5000; i++ {
		raw := rng.Uint64()
		if i%2 == 0 {
			raw >>= 20
		}

		v := new(big.Int).SetUint64(raw)

		host := new(big.Int).Div(new(big.Int).Mul(v, big.NewInt(512)), unit)
		assert.Equal(t, host.Uint64(), SectorsTo32MiB(raw), "raw %d", raw)

		nand := new(big.Int).Div(new(big.Int).Mul(v, big.NewInt(8192)), unit)
		assert.Equal(t, nand.Uint64(), NandPagesTo32MiB(raw), "raw %d", raw)
	}
}

func vendorBlock(host, nand uint64) []byte {
	b := make([]byte, VendorBlockSize)
	drivestats.PutU64(b[0x00:0x06], 7, false, 6)
	drivestats.PutU64(b[0x06:0x0c], host, false, 6)
	drivestats.PutU64(b[0x0c:0x12], nand, false, 6)
	drivestats.PutU16(b[0x12:0x14], 3, true)
	drivestats.PutU32(b[0x14:0x18], 500, true)
	drivestats.PutU64(b[0x18:0x20], 90000, false, 8)
	drivestats.PutU64(b[0x20:0x28], 12, false, 8)

	return b
}

func vendorPage(block []byte) []byte {
	b := []byte{0x37, 0, 0, 0}
	drivestats.PutU16(b[2:4], uint16(len(block)), true)

	return append(b, block...)
}

func TestVendorSmart(t *testing.T) {
	scp := family.Default().SCP[0]
	ctx, out := newContext(drivestats.DefaultMask|drivestats.MaskWriteAmp, scp)

	Decode(ctx, drivestats.VariantVendorSmart, vendorPage(vendorBlock(40, 130)))

	s := out.String()
	assert.Contains(t, s, "  VENDOR SMART (page 0x37 subpage 0x00)\n")
	assert.Contains(t, s, "  Host writes (32 MiB)                        40\n")
	assert.Contains(t, s, "  Spare blocks                                500\n")
	assert.Contains(t, s, "  Power on minutes                            90000\n")

	out.Reset()
	ReportWriteAmp(ctx)
	assert.Contains(t, out.String(), "family=SCP\n  HOST_WRITES_32MB: 40\n  NAND_WRITES_32MB: 130\n  WRITE_AMPLIFICATION: 3.25\n")
}

func TestVendorSmartNotSCP(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)

	Decode(ctx, drivestats.VariantVendorSmart, vendorPage(vendorBlock(1, 2)))

	assert.True(t, strings.HasPrefix(out.String(), "WARN: vendor smart page 0x37"))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.False(t, ctx.Drive.Log37.HostWrites.Valid())
}

func TestVendorSmartShort(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, family.Default().SCP[1])

	Decode(ctx, drivestats.VariantVendorSmart, vendorPage(vendorBlock(1, 2)[:VendorBlockSize-1]))

	assert.Equal(t, "WARN: vendor smart block is 39 bytes, Hitachi SCP needs 40, not decoded\n", out.String())
	assert.False(t, ctx.Drive.Log37.NandWrites.Valid())
}

func TestErrorCounters(t *testing.T) {
	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)

	Decode(ctx, drivestats.VariantErrorCounters, page(0x03,
		param(0x0003, 4, 17),
		param(0x0006, 4, 1),
		param(0x8000, 4, 9)))

	expected := "" +
		"  READ ERROR COUNTERS (page 0x03)\n" +
		"  0x0003 Total errors corrected               17\n" +
		"  0x0006 Total uncorrected errors             1\n" +
		"  0x8000 Unknown parameter                    9\n"
	assert.Equal(t, expected, out.String())
}

func TestParamLengthWarning(t *testing.T) {
	odd := []byte{0x00, 0x01, 0x00, 0x02, 0xaa, 0xbb}

	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)
	Decode(ctx, drivestats.VariantSsdMedia, page(0x11, odd))
	assert.NotContains(t, out.String(), "WARN")
	assert.Contains(t, out.String(), "  0x0001 Percentage used endurance indicator  0\n")

	ctx, out = newContext(drivestats.DefaultMask, buckhornTLA)
	ctx.WarnParamLen = true
	Decode(ctx, drivestats.VariantSsdMedia, page(0x11, odd))
	assert.Contains(t, out.String(), "WARN: SSD MEDIA parameter 0x0001 has unsupported length 2\n")
}

func TestInfoExceptionsAccumulate(t *testing.T) {
	ctx, _ := newContext(drivestats.DefaultMask, buckhornTLA)

	Decode(ctx, drivestats.VariantInfoExceptions, page(0x2f, param(paramNandWrites, 4, 77)))

	nand, ok := ctx.Drive.Log2F.NandWrites.Get()
	assert.True(t, ok)
	assert.Equal(t, uint64(77), nand)
	assert.False(t, ctx.Drive.Log2F.HostWrites.Valid())
	assert.False(t, ctx.Drive.Log30.NandWrites.Valid())
}

func TestSmartAttr(t *testing.T) {
	payload := make([]byte, smartRevisionSize+3*smartAttrSize)
	drivestats.PutU16(payload[0:2], 16, false)

	a := payload[smartRevisionSize:]
	a[0] = 9
	drivestats.PutU16(a[1:3], 0x32, false)
	a[3], a[4] = 100, 99
	drivestats.PutU64(a[5:11], 31337, false, 6)

	// second slot empty, third unnamed
	a[2*smartAttrSize] = 250

	revision, attrs := ParseSmartAttrs(payload)
	assert.Equal(t, uint16(16), revision)
	assert.Equal(t, []SmartAttr{
		{ID: 9, Flags: 0x32, Current: 100, Worst: 99, Raw: 31337},
		{ID: 250},
	}, attrs)

	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)
	Decode(ctx, drivestats.VariantSmartAttr, payload)
	assert.Equal(t, ""+
		"  revision=16\n"+
		"    9 Power_On_Hours           flags=0x0032 value=100 worst=99 raw=31337\n"+
		"  250 Unknown_Attribute        flags=0x0000 value=0 worst=0 raw=0\n", out.String())
}

func TestFuelGauge(t *testing.T) {
	payload := []byte{2, 0x01, 0, 5}

	entry := make([]byte, fuelGaugeEntrySize)
	drivestats.PutU16(entry[0:2], 0x0004, true)
	entry[2] = 1
	drivestats.PutU64(entry[4:12], 1<<40, false, 8)
	payload = append(payload, entry...)

	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)
	Decode(ctx, drivestats.VariantFuelGauge, payload)

	assert.Equal(t, ""+
		"  version=2 flags=0x01 count=5\n"+
		"  0x0004 Host sectors written                 1099511627776 unit=1\n", out.String())
}

func TestBms(t *testing.T) {
	payload := make([]byte, BmsData1Size)
	copy(payload[0:6], []byte{126, 1, 2, 3, 4, 5})
	drivestats.PutU32(payload[6:10], 600, true)
	payload[10] = 0x04
	drivestats.PutU16(payload[12:14], 12, true)
	drivestats.PutU16(payload[14:16], 0x8000, true)
	drivestats.PutU16(payload[16:18], 3, true)
	drivestats.PutU16(payload[18:20], 1, true)
	drivestats.PutU64(payload[20:28], 0x123456789, false, 8)
	drivestats.PutU32(payload[28:32], 11, true)

	ctx, out := newContext(drivestats.DefaultMask, buckhornTLA)
	Decode(ctx, drivestats.VariantBms1, payload)

	assert.Equal(t, ""+
		"  time=01/02/2026 03:04:05 power_on_minutes=600 status=0x04\n"+
		"  scan_count=12 progress=50.00% medium_entries=3 reassigned=1\n"+
		"  last_scanned_lba=4886718345 prior_scan_count=11\n", out.String())

	out.Reset()
	Decode(ctx, drivestats.VariantBms, payload[:BmsDataSize])
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	out.Reset()
	Decode(ctx, drivestats.VariantBms1, payload[:BmsDataSize])
	assert.Equal(t, "WARN: bms1 payload too short: 20 bytes, need 32\n", out.String())
}

func TestFormattedOff(t *testing.T) {
	ctx, out := newContext(drivestats.MaskHeaders, buckhornTLA)

	Decode(ctx, drivestats.VariantSmartData, page(0x30, param(paramHostWrites, 8, 1)))

	assert.Empty(t, out.String())
	assert.True(t, ctx.Drive.Log30.HostWrites.Valid())
}
