package dump

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// openInput opens path for a single sequential pass. A shared lock is taken
// when available so a concurrent writer holding an exclusive lock is noticed.
func openInput(path string) (*os.File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	fd := int(fp.Fd())

	if err := unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL); err != nil {
		logrus.WithField("path", path).Debugf("fadvise: %s", err)
	}

	if err := unix.Flock(fd, unix.LOCK_SH|unix.LOCK_NB); err != nil {
		logrus.WithField("path", path).Debugf("%s is locked by a writer, records may be incomplete", path)
	}

	return fp, nil
}
