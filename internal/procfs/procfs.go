package procfs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"procnet-exporter/internal/procnet"
)

// FS is a very small helper around a procfs mount point.
//
// It covers what the exporter needs:
// - reading the connection tables under `/proc/net/`
// - reading sysctl values under `/proc/sys/...`
//
// Pointing --path.procfs at a directory with copies of these files is the
// easiest way to try the exporter against a captured host.
type FS struct {
	Root string
}

func (fs FS) Path(rel string) string {
	return filepath.Join(fs.Root, rel)
}

func (fs FS) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(fs.Path(rel))
}

func (fs FS) WriteFile(rel string, data []byte, perm os.FileMode) error {
	return os.WriteFile(fs.Path(rel), data, perm)
}

// TablePath returns the path of the connection table for mode,
// e.g. /proc/net/tcp6.
func (fs FS) TablePath(mode procnet.Mode) string {
	return fs.Path(filepath.Join("net", mode.String()))
}

// ReadTable opens and decodes the connection table for mode.
//
// A missing table (IPv6 disabled, no procfs) still matches os.ErrNotExist.
func (fs FS) ReadTable(mode procnet.Mode) ([]procnet.Entry, error) {
	path := fs.TablePath(mode)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s table", mode)
	}
	defer f.Close()

	entries, err := procnet.Parse(f, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return entries, nil
}
