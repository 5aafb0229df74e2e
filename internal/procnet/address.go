package procnet

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"

	"github.com/pkg/errors"
)

// The kernel prints each 32-bit word of an address as the word's
// in-memory bytes, most significant hex digit first. On little-endian
// hosts that reverses the bytes of every word, so "0100007F" is 127.0.0.1.

const (
	ipv4HexLen = 8
	ipv6HexLen = 32
)

// SwapWord reverses the byte order of v. It is its own inverse.
func SwapWord(v uint32) uint32 {
	return v<<24&0xFF000000 | v<<8&0x00FF0000 | v>>8&0x0000FF00 | v>>24&0x000000FF
}

// DecodeIPv4Hex decodes an 8-digit table token into an IPv4 address.
func DecodeIPv4Hex(tok string) (netip.Addr, error) {
	if len(tok) != ipv4HexLen {
		return netip.Addr{}, &FormatError{Token: tok, Want: "8 hex digits"}
	}
	v, err := strconv.ParseUint(tok, 16, 32)
	if err != nil {
		return netip.Addr{}, &FormatError{Token: tok, Want: "8 hex digits"}
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], SwapWord(uint32(v)))
	return netip.AddrFrom4(b), nil
}

// DecodeIPv6Hex decodes a 32-digit table token into an IPv6 address.
func DecodeIPv6Hex(tok string) (netip.Addr, error) {
	if len(tok) != ipv6HexLen {
		return netip.Addr{}, &FormatError{Token: tok, Want: "32 hex digits"}
	}
	raw, err := hex.DecodeString(tok)
	if err != nil {
		return netip.Addr{}, &FormatError{Token: tok, Want: "32 hex digits"}
	}
	var b [16]byte
	for i := 0; i < 16; i += 4 {
		binary.BigEndian.PutUint32(b[i:], SwapWord(binary.BigEndian.Uint32(raw[i:])))
	}
	return netip.AddrFrom16(b), nil
}

// DecodeAddress decodes tok with the address width of mode.
func DecodeAddress(mode Mode, tok string) (netip.Addr, error) {
	if mode.IsIPv6() {
		return DecodeIPv6Hex(tok)
	}
	return DecodeIPv4Hex(tok)
}

// EncodeIPv4Hex is the inverse of DecodeIPv4Hex.
func EncodeIPv4Hex(a netip.Addr) (string, error) {
	if !a.Is4() {
		return "", errors.Errorf("%v is not an IPv4 address", a)
	}
	b := a.As4()
	return fmt.Sprintf("%08X", SwapWord(binary.BigEndian.Uint32(b[:]))), nil
}

// EncodeIPv6Hex is the inverse of DecodeIPv6Hex.
func EncodeIPv6Hex(a netip.Addr) (string, error) {
	if !a.Is6() {
		return "", errors.Errorf("%v is not an IPv6 address", a)
	}
	b := a.As16()
	out := make([]byte, 0, ipv6HexLen)
	for i := 0; i < 16; i += 4 {
		out = fmt.Appendf(out, "%08X", SwapWord(binary.BigEndian.Uint32(b[i:])))
	}
	return string(out), nil
}

// EncodeAddress encodes a with the address width of mode.
func EncodeAddress(mode Mode, a netip.Addr) (string, error) {
	if mode.IsIPv6() {
		return EncodeIPv6Hex(a)
	}
	return EncodeIPv4Hex(a)
}
