//go:build !linux

package dump

import (
	"os"

	"github.com/pkg/errors"
)

func openInput(path string) (*os.File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	return fp, nil
}
