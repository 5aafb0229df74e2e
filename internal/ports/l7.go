package ports

import (
	"strings"

	"github.com/google/gopacket/layers"

	"procnet-exporter/internal/procnet"
)

// ServiceName returns a short service name for a port of the given mode,
// taken from the IANA registry tables shipped with gopacket.
//
// - registered port => IANA name (e.g. 443=https, 53=domain)
// - otherwise => "unknown"
// - port 0 (unbound / wildcard) => "na"
func ServiceName(mode procnet.Mode, port uint32) string {
	if port == 0 {
		return "na"
	}
	if port > 0xFFFF {
		return "unknown"
	}

	// gopacket renders registered ports as "443(https)" and others as "443".
	var s string
	if mode.IsTCP() {
		s = layers.TCPPort(port).String()
	} else {
		s = layers.UDPPort(port).String()
	}

	i := strings.IndexByte(s, '(')
	if i < 0 || !strings.HasSuffix(s, ")") || i+1 == len(s)-1 {
		return "unknown"
	}
	return s[i+1 : len(s)-1]
}
