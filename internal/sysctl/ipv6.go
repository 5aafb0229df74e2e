package sysctl

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"procnet-exporter/internal/procfs"
)

// disableIPv6RelPath is the procfs-relative path to the sysctl value.
//
// sysctl net.ipv6.conf.all.disable_ipv6 is exposed as:
//   /proc/sys/net/ipv6/conf/all/disable_ipv6
//
// The file is absent when the kernel is built or booted without IPv6; the
// tcp6/udp6 connection tables are absent then too.
const disableIPv6RelPath = "sys/net/ipv6/conf/all/disable_ipv6"

// IPv6Disabled reports whether IPv6 is switched off on this host.
// A missing sysctl file counts as disabled.
func IPv6Disabled(fs procfs.FS) (bool, error) {
	b, err := fs.ReadFile(disableIPv6RelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}

	s := strings.TrimSpace(string(b))
	if s == "" {
		return false, errors.Errorf("%s is empty", fs.Path(disableIPv6RelPath))
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s value %q", fs.Path(disableIPv6RelPath), s)
	}

	return v != 0, nil
}
