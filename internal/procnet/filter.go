package procnet

import "net/netip"

// Criteria selects entries in Filter. Mode must always match; the other
// fields only constrain when set (valid address, non-nil port).
type Criteria struct {
	Mode          Mode
	LocalAddress  netip.Addr
	RemoteAddress netip.Addr
	LocalPort     *uint32
	RemotePort    *uint32
}

// Port returns a pointer to p, for use in Criteria.
func Port(p uint32) *uint32 { return &p }

// Match reports whether e satisfies every set criterion.
func (c Criteria) Match(e Entry) bool {
	if e.Mode != c.Mode {
		return false
	}
	if c.LocalAddress.IsValid() && c.LocalAddress != e.LocalAddress {
		return false
	}
	if c.RemoteAddress.IsValid() && c.RemoteAddress != e.RemoteAddress {
		return false
	}
	if c.LocalPort != nil && *c.LocalPort != e.LocalPort {
		return false
	}
	if c.RemotePort != nil && *c.RemotePort != e.RemotePort {
		return false
	}
	return true
}

// Filter returns the entries matching c, in their original order.
// The input slice is not modified.
func Filter(entries []Entry, c Criteria) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
