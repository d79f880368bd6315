package variant

import (
	"github.com/dustin/go-humanize"

	"machinerun.io/drivestats"
	"machinerun.io/drivestats/family"
)

const (
	// ReportUnit is the unit write counters are reported in.
	ReportUnit = 32 * humanize.MiByte

	bytesPerSector   = 512
	bytesPerNandPage = 8192
)

// SectorsTo32MiB converts a count of 512 byte sectors to 32 MiB units,
// rounding down. Equal to sectors*512/ReportUnit without the overflow.
func SectorsTo32MiB(sectors uint64) uint64 {
	return sectors / (ReportUnit / bytesPerSector)
}

// NandPagesTo32MiB converts a count of 8 KiB NAND pages to 32 MiB units,
// rounding down.
func NandPagesTo32MiB(pages uint64) uint64 {
	return pages / (ReportUnit / bytesPerNandPage)
}

// ReportWriteAmp prints the write amplification summary of ctx.Drive. It is
// called when the drive's records end, at the next FRU header or EOF, and
// prints nothing unless the write amplification bit is set and a FRU header
// was seen.
func ReportWriteAmp(ctx *Context) {
	d := ctx.drive()
	if !ctx.Mask.Has(drivestats.MaskWriteAmp) || !d.HaveFru {
		return
	}

	f := ctx.family()

	ctx.say("WA: sn=%s tla=%s family=%s\n", d.Fru.Serial, d.Fru.TLA, f)

	var host, nand drivestats.Counter

	switch f {
	case family.Buckhorn:
		host = convert(d.Log30.HostWrites, SectorsTo32MiB)
		nand = convert(d.Log30.NandWrites, NandPagesTo32MiB)
	case family.RDX:
		host, nand = d.Log31.HostWrites, d.Log31.NandWrites
	case family.SCP:
		host, nand = d.Log37.HostWrites, d.Log37.NandWrites
	default:
		ctx.warnf("write amplification not supported for tla %s", d.Fru.TLA)
		return
	}

	hostValue, hostOK := host.Get()
	nandValue, nandOK := nand.Get()

	if hostOK {
		ctx.say("  HOST_WRITES_32MB: %d\n", hostValue)
	} else {
		ctx.warnf("HOST_WRITES not found for sn %s", d.Fru.Serial)
	}

	if nandOK {
		ctx.say("  NAND_WRITES_32MB: %d\n", nandValue)
	} else {
		ctx.warnf("NAND_WRITES not found for sn %s", d.Fru.Serial)
	}

	if hostOK && nandOK && hostValue > 0 {
		ctx.say("  WRITE_AMPLIFICATION: %.2f\n", float64(nandValue)/float64(hostValue))
	}
}

func convert(c drivestats.Counter, f func(uint64) uint64) drivestats.Counter {
	out := drivestats.Counter{}

	if v, ok := c.Get(); ok {
		out.Set(f(v))
	}

	return out
}
