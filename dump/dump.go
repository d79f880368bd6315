// Package dump prints the records of a drive stats log as text.
package dump

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"machinerun.io/drivestats"
	"machinerun.io/drivestats/family"
	"machinerun.io/drivestats/variant"
)

// Options controls a Dumper.
type Options struct {
	Mask drivestats.Mask

	// Lenient reports unknown header tags as warnings and keeps scanning
	// after them instead of stopping.
	Lenient bool

	// WarnParamLen warns about log page parameters of unsupported length.
	// Always on when Mask has MaskDebug.
	WarnParamLen bool

	// Families classifies drives. nil uses the embedded tables.
	Families *family.Classifier

	Logger logrus.FieldLogger
}

// Dumper prints drive stats streams to an io.Writer.
type Dumper struct {
	out  io.Writer
	opts Options
}

// New returns a Dumper writing to out.
func New(out io.Writer, opts Options) *Dumper {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	if opts.Families == nil {
		opts.Families = family.NewClassifier(family.Default())
	}

	return &Dumper{out: out, opts: opts}
}

// state is the per-stream decode state. It is never shared between streams.
type state struct {
	mask           drivestats.Mask
	oldWriteBuffer bool
	ctx            *variant.Context
	log            logrus.FieldLogger
	records        int
}

// Dump prints every record of r. It returns nil at the end of the stream
// and the error otherwise; fatal errors are also printed as an ERROR line.
func (d *Dumper) Dump(r io.Reader) error {
	log := d.opts.Logger.WithField("run", uuid.NewV4().String())

	st := &state{
		mask: d.opts.Mask,
		log:  log,
		ctx: &variant.Context{
			Out:          d.out,
			Mask:         d.opts.Mask,
			Drive:        &drivestats.DriveInfo{},
			Families:     d.opts.Families,
			WarnParamLen: d.opts.WarnParamLen || d.opts.Mask.Has(drivestats.MaskDebug),
			Log:          log,
		},
	}

	rd := drivestats.NewReader(r)
	rd.SetLogger(log)

	err := d.run(rd, st)
	if err != nil {
		fmt.Fprintf(d.out, "ERROR: %v\n", err)
		log.WithField("offset", rd.Offset()).Debugf("stopped after %d records", st.records)

		return err
	}

	log.Debugf("read %d records, %s", st.records, humanize.Bytes(uint64(rd.Offset())))

	return nil
}

//nolint:gocyclo
func (d *Dumper) run(rd *drivestats.Reader, st *state) error {
	for {
		hdr, err := rd.Next()
		if err != nil {
			if d.opts.Lenient && errors.Cause(err) == drivestats.ErrUnknownHeader {
				fmt.Fprintf(d.out, "WARN: %v, skipped\n", err)
				continue
			}

			return err
		}

		st.log.WithField("offset", hdr.Offset).Debugf("%s header", hdr.Kind)

		switch {
		case hdr.Kind == drivestats.KindEOF:
			variant.ReportWriteAmp(st.ctx)
			fmt.Fprintln(d.out, "hit eof")

			return nil

		case hdr.Kind.IsSession():
			st.oldWriteBuffer = hdr.Kind == drivestats.KindSessionOldWriteBuffer

			if st.mask.Has(drivestats.MaskSession) {
				fmt.Fprintln(d.out, hdr.Session)
			}

		case hdr.Kind.IsFru():
			variant.ReportWriteAmp(st.ctx)
			st.ctx.Drive = drivestats.NewDriveInfo(*hdr.Fru)

			if st.mask.Has(drivestats.MaskFru) {
				fmt.Fprintln(d.out, hdr.Fru)
			}

		case hdr.Kind.IsData():
			if err := d.data(rd, st, hdr.Data); err != nil {
				return err
			}

		case hdr.Kind == drivestats.KindOldFuelGauge:
			d.oldFuelGauge(st, hdr.OldFuelGauge)

		case hdr.Kind == drivestats.KindFcop:
			if st.mask.Has(drivestats.MaskFcop) {
				fmt.Fprintln(d.out, hdr.Fcop)
			}
		}

		st.records++
	}
}

func (d *Dumper) data(rd *drivestats.Reader, st *state, hdr *drivestats.DataHeader) error {
	if st.mask.Has(drivestats.MaskDataHeader) {
		fmt.Fprintln(d.out, hdr)
	}

	n, clamped, err := hdr.PayloadLength(st.oldWriteBuffer)
	if clamped {
		fmt.Fprintf(d.out, "WARN: data length %d exceeds maximum, clamped to %d\n", hdr.Length, drivestats.MaxDataLength)
	}

	if err != nil {
		return err
	}

	payload, err := rd.ReadPayload(n)
	if err != nil {
		return err
	}

	if len(payload) != n {
		fmt.Fprintf(d.out, "WARN: requested %d bytes, read %d\n", n, len(payload))
	}

	variant.Decode(st.ctx, hdr.Variant, payload)

	return nil
}

func (d *Dumper) oldFuelGauge(st *state, raw []byte) {
	if st.mask.Raw() {
		drivestats.WriteHexDump(d.out, raw, "  ")
	}

	if !st.mask.Has(drivestats.MaskDataHeader) && !st.mask.Formatted() {
		return
	}

	fields := drivestats.OldFuelGaugeFields(raw)
	for len(fields) < 3 {
		fields = append(fields, "")
	}

	fmt.Fprintf(d.out, "TIME: %s\n", fields[0])
	fmt.Fprintf(d.out, "  DRIVE: %s\n", fields[1])
	fmt.Fprintf(d.out, "  FUEL_GAUGE: %s\n", fields[2])
}
