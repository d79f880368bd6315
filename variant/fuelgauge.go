package variant

import (
	"machinerun.io/drivestats"
)

const (
	fuelGaugeHeaderSize = 4
	fuelGaugeEntrySize  = 12
)

var fuelGaugeNames = map[uint16]string{
	0x0001: "Power on hours",
	0x0002: "Host write commands",
	0x0003: "Host read commands",
	0x0004: "Host sectors written",
	0x0005: "Host sectors read",
	0x0006: "NAND pages written",
	0x0007: "Average erase count",
	0x0008: "Maximum erase count",
	0x0009: "Spare blocks remaining",
	0x000a: "Percent life used",
	0x000b: "Power cycles",
	0x000c: "Unsafe shutdowns",
}

// FuelGaugeEntry - one fuel gauge counter.
type FuelGaugeEntry struct {
	Code  uint16
	Unit  uint8
	Value uint64
}

func decodeFuelGauge(ctx *Context, payload []byte) {
	if len(payload) < fuelGaugeHeaderSize {
		ctx.warnf("fuel gauge payload too short: %d bytes", len(payload))
		return
	}

	version := payload[0]
	flags := payload[1]
	count := int(drivestats.U16(payload[2:4], true))

	ctx.printf("  version=%d flags=0x%02x count=%d\n", version, flags, count)

	if fit := (len(payload) - fuelGaugeHeaderSize) / fuelGaugeEntrySize; count > fit {
		ctx.log().Debugf("fuel gauge declares %d entries, payload holds %d", count, fit)
		count = fit
	}

	for i := 0; i < count; i++ {
		off := fuelGaugeHeaderSize + i*fuelGaugeEntrySize
		b := payload[off : off+fuelGaugeEntrySize]

		e := FuelGaugeEntry{
			Code:  drivestats.U16(b[0:2], true),
			Unit:  b[2],
			Value: drivestats.U64(b[4:12], false, 8),
		}

		name, ok := fuelGaugeNames[e.Code]
		if !ok {
			name = unknownParam
		}

		ctx.printf("  0x%04x %-36s %d unit=%d\n", e.Code, name, e.Value, e.Unit)
	}
}
