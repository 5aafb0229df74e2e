package procnet

import (
	"net/netip"
	"strconv"
	"strings"
)

// Column positions in a tokenized data row:
//
//	sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
//	 0: 0100007F:0019 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 12345
const (
	colLocal  = 1
	colRemote = 2
	colState  = 3
	colUID    = 7

	// MinColumns is the smallest number of tokens a data row may have.
	MinColumns = colUID + 1
)

// DecodeRow builds an Entry from a tokenized data row.
func DecodeRow(tokens []string, mode Mode) (Entry, error) {
	if len(tokens) < MinColumns {
		return Entry{}, &DecodeError{Field: FieldRow, Token: strings.Join(tokens, " "), Err: ErrShortRow}
	}

	e := Entry{Mode: mode}
	var err error

	e.LocalAddress, e.LocalPort, err = decodeEndpoint(mode, tokens[colLocal], FieldLocal, FieldLocalAddress, FieldLocalPort)
	if err != nil {
		return Entry{}, err
	}
	e.RemoteAddress, e.RemotePort, err = decodeEndpoint(mode, tokens[colRemote], FieldRemote, FieldRemoteAddress, FieldRemotePort)
	if err != nil {
		return Entry{}, err
	}

	st, err := strconv.ParseInt(tokens[colState], 16, 32)
	if err != nil {
		return Entry{}, &DecodeError{Field: FieldState, Token: tokens[colState], Err: err}
	}
	e.ConnectionState = int32(st)

	uid, err := strconv.ParseInt(tokens[colUID], 10, 32)
	if err != nil {
		return Entry{}, &DecodeError{Field: FieldUID, Token: tokens[colUID], Err: err}
	}
	e.UID = int32(uid)

	return e, nil
}

// decodeEndpoint splits "<addr_hex>:<port_hex>". Ports are printed in
// network order already, so only the address needs its bytes swapped.
func decodeEndpoint(mode Mode, tok string, whole, addrField, portField Field) (netip.Addr, uint32, error) {
	addrHex, portHex, ok := strings.Cut(tok, ":")
	if !ok {
		return netip.Addr{}, 0, &DecodeError{Field: whole, Token: tok, Err: ErrMissingPort}
	}

	addr, err := DecodeAddress(mode, addrHex)
	if err != nil {
		return netip.Addr{}, 0, &DecodeError{Field: addrField, Token: addrHex, Err: err}
	}

	port, err := strconv.ParseUint(portHex, 16, 32)
	if err != nil {
		return netip.Addr{}, 0, &DecodeError{Field: portField, Token: portHex, Err: err}
	}

	return addr, uint32(port), nil
}
