package variant

import (
	"machinerun.io/drivestats"
)

const (
	// BmsDataSize - BmsData layout size.
	BmsDataSize = 20

	// BmsData1Size - BmsData1 layout size.
	BmsData1Size = 32

	bmsProgressFull = 0x10000
)

// BmsData - background media scan summary.
type BmsData struct {
	Time           drivestats.Timestamp
	PowerOnMinutes uint32
	Status         uint8
	ScanCount      uint16
	ScanProgress   uint16
	MediumEntries  uint16
	Reassigned     uint16
}

// BmsData1 - second generation summary, BmsData plus scan position.
type BmsData1 struct {
	BmsData
	LastScannedLBA uint64
	PriorScanCount uint32
}

// UnmarshalBinary decodes the first BmsDataSize bytes of buf.
func (b *BmsData) UnmarshalBinary(buf []byte) error {
	if len(buf) < BmsDataSize {
		return drivestats.ErrShortRecord
	}

	copy(b.Time[:], buf[0:6])
	b.PowerOnMinutes = drivestats.U32(buf[6:10], true)
	b.Status = buf[10]
	b.ScanCount = drivestats.U16(buf[12:14], true)
	b.ScanProgress = drivestats.U16(buf[14:16], true)
	b.MediumEntries = drivestats.U16(buf[16:18], true)
	b.Reassigned = drivestats.U16(buf[18:20], true)

	return nil
}

// UnmarshalBinary decodes the first BmsData1Size bytes of buf.
func (b *BmsData1) UnmarshalBinary(buf []byte) error {
	if len(buf) < BmsData1Size {
		return drivestats.ErrShortRecord
	}

	if err := b.BmsData.UnmarshalBinary(buf); err != nil {
		return err
	}

	b.LastScannedLBA = drivestats.U64(buf[20:28], false, 8)
	b.PriorScanCount = drivestats.U32(buf[28:32], true)

	return nil
}

// Progress returns the scan progress in percent.
func (b BmsData) Progress() float64 {
	return float64(b.ScanProgress) * 100 / bmsProgressFull
}

func (ctx *Context) printBms(b BmsData) {
	ctx.printf("  time=%s power_on_minutes=%d status=0x%02x\n", b.Time, b.PowerOnMinutes, b.Status)
	ctx.printf("  scan_count=%d progress=%.2f%% medium_entries=%d reassigned=%d\n",
		b.ScanCount, b.Progress(), b.MediumEntries, b.Reassigned)
}

func decodeBms(ctx *Context, payload []byte) {
	b := BmsData{}

	if err := b.UnmarshalBinary(payload); err != nil {
		ctx.warnf("bms payload too short: %d bytes, need %d", len(payload), BmsDataSize)
		return
	}

	ctx.printBms(b)
}

func decodeBms1(ctx *Context, payload []byte) {
	b := BmsData1{}

	if err := b.UnmarshalBinary(payload); err != nil {
		ctx.warnf("bms1 payload too short: %d bytes, need %d", len(payload), BmsData1Size)
		return
	}

	ctx.printBms(b.BmsData)
	ctx.printf("  last_scanned_lba=%d prior_scan_count=%d\n", b.LastScannedLBA, b.PriorScanCount)
}
