package procnet

// This package decodes the kernel connection tables exposed under
// `/proc/net/{tcp,udp,tcp6,udp6}` into typed entries and filters them.
//
// IMPORTANT:
// - Keep this package free from file access, logging and Prometheus.
//   Callers hand it a reader and get entries or an error back.
// - Column positions are fixed by the kernel table layout; do not try to
//   detect columns from the header.

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects one of the four connection tables.
type Mode int

const (
	TCP Mode = iota
	UDP
	TCP6
	UDP6
)

// Modes lists every supported mode in table order.
var Modes = []Mode{TCP, UDP, TCP6, UDP6}

var modeNames = map[Mode]string{
	TCP:  "tcp",
	UDP:  "udp",
	TCP6: "tcp6",
	UDP6: "udp6",
}

// String returns the kernel table name for m (e.g. "tcp6").
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// IsIPv6 reports whether addresses in the table for m are 16 bytes wide.
func (m Mode) IsIPv6() bool { return m == TCP6 || m == UDP6 }

// IsTCP reports whether m is one of the TCP tables.
func (m Mode) IsTCP() bool { return m == TCP || m == TCP6 }

func (m Mode) valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a table name such as "tcp" or "UDP6".
func ParseMode(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if modeNames[m] == want {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, errors.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Entry is one decoded row of a connection table.
//
// LocalAddress and RemoteAddress always share the address family implied
// by Mode. ConnectionState is the raw kernel code; see State for names.
type Entry struct {
	LocalAddress    netip.Addr `json:"local_address"`
	LocalPort       uint32     `json:"local_port"`
	RemoteAddress   netip.Addr `json:"remote_address"`
	RemotePort      uint32     `json:"remote_port"`
	ConnectionState int32      `json:"connection_state"`
	UID             int32      `json:"uid"`
	Mode            Mode       `json:"mode"`
}

// Local returns the local endpoint.
func (e Entry) Local() netip.AddrPort {
	return netip.AddrPortFrom(e.LocalAddress, uint16(e.LocalPort))
}

// Remote returns the remote endpoint.
func (e Entry) Remote() netip.AddrPort {
	return netip.AddrPortFrom(e.RemoteAddress, uint16(e.RemotePort))
}

// State returns the connection state as a named TCP state.
func (e Entry) State() State { return State(e.ConnectionState) }

// Listening reports whether e accepts new peers: a TCP socket in LISTEN,
// or a UDP socket that is not connected to a remote endpoint.
func (e Entry) Listening() bool {
	if e.Mode.IsTCP() {
		return e.State() == StateListen
	}
	return e.RemotePort == 0 && e.RemoteAddress.IsUnspecified()
}
