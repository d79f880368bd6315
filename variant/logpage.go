package variant

import (
	"machinerun.io/drivestats"
)

const (
	paramHostWrites = 0x00f7
	paramNandWrites = 0x00f8
)

const unknownParam = "Unknown parameter"

var errorCounterPages = map[byte]string{
	0x02: "WRITE ERROR COUNTERS",
	0x03: "READ ERROR COUNTERS",
	0x05: "VERIFY ERROR COUNTERS",
}

var errorCounterParams = map[uint16]string{
	0x0000: "Errors corrected without delay",
	0x0001: "Errors corrected with delay",
	0x0002: "Total rewrites or rereads",
	0x0003: "Total errors corrected",
	0x0004: "Total times correction algorithm run",
	0x0005: "Total bytes processed",
	0x0006: "Total uncorrected errors",
}

var ssdMediaParams = map[uint16]string{
	0x0001: "Percentage used endurance indicator",
}

var infoExceptionParams = map[uint16]string{
	0x0000: "Informational exceptions general",
	0x0001: "Temperature warning",
	0x00f7: "Host writes (32 MiB)",
	0x00f8: "NAND writes (32 MiB)",
}

var smartDataParams = map[uint16]string{
	0x0001: "Power on hours",
	0x0002: "Power cycle count",
	0x0003: "Unsafe shutdown count",
	0x0004: "Reallocated blocks",
	0x0005: "Program fail count",
	0x0006: "Erase fail count",
	0x0007: "Average erase count",
	0x0008: "Maximum erase count",
	0x0009: "Spare blocks remaining",
	0x000a: "Uncorrectable ECC errors",
	0x00f7: "Host sectors written",
	0x00f8: "NAND pages written",
}

var smartData31Params = map[uint16]string{
	0x0001: "Percent life used",
	0x0002: "Remaining spare blocks",
	0x0003: "Average erase count",
	0x0004: "Runtime bad blocks",
	0x0005: "Temperature (C)",
	0x00f7: "Host writes (32 MiB)",
	0x00f8: "NAND writes (32 MiB)",
}

// walkLogPage prints every parameter of a log page payload under title.
// Parameters 0xF7 and 0xF8 are stored into counters when it is not nil.
func walkLogPage(ctx *Context, payload []byte, title string, names map[uint16]string,
	counters *drivestats.WriteCounters) {
	if len(payload) > 0 {
		ctx.printf("  %s (page 0x%02x)\n", title, payload[0]&0x3f)
	}

	it := drivestats.NewLogPageIterator(payload, len(payload))

	for {
		p, ok := it.Next()
		if !ok {
			return
		}

		if !p.Supported && ctx.WarnParamLen {
			ctx.warnf("%s parameter 0x%04x has unsupported length %d", title, p.Code, p.Len)
		}

		if counters != nil {
			switch p.Code {
			case paramHostWrites:
				counters.HostWrites.Set(p.Value)
			case paramNandWrites:
				counters.NandWrites.Set(p.Value)
			}
		}

		name, ok := names[p.Code]
		if !ok {
			name = unknownParam
		}

		ctx.printf("  0x%04x %-36s %d\n", p.Code, name, p.Value)
	}
}

func decodeErrorCounters(ctx *Context, payload []byte) {
	title := "ERROR COUNTERS"

	if len(payload) > 0 {
		if t, ok := errorCounterPages[payload[0]&0x3f]; ok {
			title = t
		}
	}

	walkLogPage(ctx, payload, title, errorCounterParams, nil)
}

func decodeSsdMedia(ctx *Context, payload []byte) {
	walkLogPage(ctx, payload, "SSD MEDIA", ssdMediaParams, nil)
}

func decodeInfoExceptions(ctx *Context, payload []byte) {
	walkLogPage(ctx, payload, "INFORMATIONAL EXCEPTIONS", infoExceptionParams, &ctx.drive().Log2F)
}

func decodeSmartData(ctx *Context, payload []byte) {
	walkLogPage(ctx, payload, "SMART DATA", smartDataParams, &ctx.drive().Log30)
}

func decodeSmartData31(ctx *Context, payload []byte) {
	walkLogPage(ctx, payload, "SMART DATA 31", smartData31Params, &ctx.drive().Log31)
}
