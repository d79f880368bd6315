// Package variant decodes data record payloads.
package variant

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"machinerun.io/drivestats"
	"machinerun.io/drivestats/family"
)

// Context carries the output and the per-drive state shared by decoders.
type Context struct {
	Out  io.Writer
	Mask drivestats.Mask

	// Drive receives write counters found in log pages. It is replaced by
	// the caller on every FRU header.
	Drive *drivestats.DriveInfo

	// Families classifies the drive for vendor specific decoding. nil uses
	// the embedded tables.
	Families *family.Classifier

	// WarnParamLen prints a WARN for log page parameters whose length is
	// neither 4 nor 8.
	WarnParamLen bool

	Log logrus.FieldLogger
}

// Decoder decodes one payload format. Counters are accumulated into
// ctx.Drive whether or not formatted output is enabled.
type Decoder func(ctx *Context, payload []byte)

var decoders = map[drivestats.Variant]Decoder{
	drivestats.VariantSmartAttr:      decodeSmartAttr,
	drivestats.VariantFuelGauge:      decodeFuelGauge,
	drivestats.VariantBms:            decodeBms,
	drivestats.VariantBms1:           decodeBms1,
	drivestats.VariantErrorCounters:  decodeErrorCounters,
	drivestats.VariantSsdMedia:       decodeSsdMedia,
	drivestats.VariantInfoExceptions: decodeInfoExceptions,
	drivestats.VariantSmartData:      decodeSmartData,
	drivestats.VariantSmartData31:    decodeSmartData31,
	drivestats.VariantVendorSmart:    decodeVendorSmart,
}

var defaultFamilies = family.NewClassifier(family.Default())

// Decode prints payload as variant v: a hex dump in raw mode, then the
// variant's formatted fields when the formatted bit is set.
func Decode(ctx *Context, v drivestats.Variant, payload []byte) {
	if ctx.Mask.Raw() {
		drivestats.WriteHexDump(ctx.Out, payload, "  ")
	}

	decode, ok := decoders[v]
	if !ok {
		ctx.warnf("unknown data variant 0x%02x, not formatted", uint8(v))
		return
	}

	ctx.log().WithField("variant", v).Debugf("decoding %d byte payload", len(payload))

	decode(ctx, payload)
}

func (ctx *Context) printf(format string, a ...interface{}) {
	if !ctx.Mask.Formatted() {
		return
	}

	fmt.Fprintf(ctx.Out, format, a...)
}

func (ctx *Context) say(format string, a ...interface{}) {
	fmt.Fprintf(ctx.Out, format, a...)
}

func (ctx *Context) warnf(format string, a ...interface{}) {
	fmt.Fprintf(ctx.Out, "WARN: "+format+"\n", a...)
}

func (ctx *Context) log() logrus.FieldLogger {
	if ctx.Log == nil {
		return logrus.StandardLogger()
	}

	return ctx.Log
}

func (ctx *Context) drive() *drivestats.DriveInfo {
	if ctx.Drive == nil {
		ctx.Drive = &drivestats.DriveInfo{}
	}

	return ctx.Drive
}

func (ctx *Context) family() family.Family {
	d := ctx.drive()
	if !d.HaveFru {
		return family.Unknown
	}

	c := ctx.Families
	if c == nil {
		c = defaultFamilies
	}

	return c.Family(d.Fru.TLA)
}
