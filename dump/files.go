package dump

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Files dumps every file in paths to out. Files are decoded concurrently and
// their output is written in argument order, each preceded by a banner when
// there is more than one file. The returned error is the first failure in
// argument order; the other files are still dumped.
func Files(ctx context.Context, paths []string, out io.Writer, opts Options) error {
	bufs := make([]bytes.Buffer, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}

			errs[i] = New(&bufs[i], opts).DumpFile(paths[i])

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var first error

	for i, path := range paths {
		if len(paths) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", path)
		}

		if _, err := bufs[i].WriteTo(out); err != nil {
			return errors.Wrap(err, "writing output")
		}

		if errs[i] != nil && first == nil {
			first = errors.Wrapf(errs[i], "%s", path)
		}
	}

	return first
}

// DumpFile dumps the file at path.
func (d *Dumper) DumpFile(path string) error {
	fp, err := openInput(path)
	if err != nil {
		fmt.Fprintf(d.out, "ERROR: %v\n", err)
		return err
	}
	defer fp.Close()

	if size, err := getFileSize(fp); err == nil {
		d.opts.Logger.WithField("path", path).Debugf("dumping %s", humanize.Bytes(size))
	}

	return d.Dump(fp)
}

func getFileSize(file *os.File) (uint64, error) {
	var err error
	var cur, pos int64

	// read the current position so we can set it back before return
	if cur, err = file.Seek(0, io.SeekCurrent); err != nil {
		return 0, err
	}

	if pos, err = file.Seek(0, io.SeekEnd); err != nil {
		return 0, err
	}

	if _, err = file.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}

	return uint64(pos), nil
}
