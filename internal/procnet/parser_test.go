package procnet

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string, mode Mode) ([]Entry, error) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	return Parse(f, mode)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", []string{}},
		{"spaces only", "     ", []string{}},
		{"single", "abc", []string{"abc"}},
		{"padding", "   0: 0100007F:0019   00000000:0000 0A  ", []string{"0:", "0100007F:0019", "00000000:0000", "0A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestParseTCP(t *testing.T) {
	entries, err := parseFixture(t, "tcp", TCP)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{
		LocalAddress:    netip.MustParseAddr("127.0.0.1"),
		LocalPort:       0x19,
		RemoteAddress:   netip.IPv4Unspecified(),
		RemotePort:      0,
		ConnectionState: 0xA,
		UID:             0,
		Mode:            TCP,
	}, entries[0])

	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), entries[1].LocalAddress)
	assert.Equal(t, uint32(0x8AE), entries[1].LocalPort)
	assert.Equal(t, int32(1000), entries[1].UID)
	assert.Equal(t, int32(0xA), entries[1].ConnectionState)

	assert.Equal(t, netip.IPv4Unspecified(), entries[2].LocalAddress)
	assert.Equal(t, uint32(0x6F), entries[2].LocalPort)
	assert.Equal(t, netip.MustParseAddr("127.0.2.3"), entries[2].RemoteAddress)
	assert.Equal(t, StateListen, entries[2].State())
}

func TestParseTCP6(t *testing.T) {
	entries, err := parseFixture(t, "tcp6", TCP6)
	require.NoError(t, err)
	require.Len(t, entries, 7)

	e0 := entries[0]
	assert.Equal(t, netip.IPv6Unspecified(), e0.LocalAddress)
	assert.Equal(t, uint32(0x22B8), e0.LocalPort)
	assert.Equal(t, netip.IPv6Unspecified(), e0.RemoteAddress)
	assert.Equal(t, int32(999), e0.UID)
	assert.Equal(t, int32(0xA), e0.ConnectionState)

	e6 := entries[6]
	assert.Equal(t, netip.MustParseAddr("2a01:cb15:8054:3e00:5ee0:c5ff:fe50:c693"), e6.LocalAddress)
	assert.Equal(t, uint32(0xAB3E), e6.LocalPort)
	assert.Equal(t, netip.MustParseAddr("2a00:1450:400c:c01::5e"), e6.RemoteAddress)
	assert.Equal(t, uint32(0x01BB), e6.RemotePort)
	assert.Equal(t, int32(1000), e6.UID)
	assert.Equal(t, StateEstablished, e6.State())

	for _, e := range entries {
		assert.True(t, e.LocalAddress.Is6())
		assert.True(t, e.RemoteAddress.Is6())
		assert.Equal(t, TCP6, e.Mode)
	}
}

func TestParseUDP(t *testing.T) {
	entries, err := parseFixture(t, "udp", UDP)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	wantPorts := []uint32{0x9B25, 0x006F, 0x00A1}
	for i, e := range entries {
		assert.Equal(t, wantPorts[i], e.LocalPort)
		assert.Equal(t, int32(7), e.ConnectionState)
		assert.True(t, e.Listening())
	}
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), entries[2].LocalAddress)
}

func TestParseUDP6(t *testing.T) {
	entries, err := parseFixture(t, "udp6", UDP6)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Listening())
	assert.False(t, entries[1].Listening())
	assert.Equal(t, "[2a00:1450:400c:c01::5e]:443", entries[1].Remote().String())
}

func TestParseWrongModeWidth(t *testing.T) {
	entries, err := parseFixture(t, "tcp6", TCP)
	require.Nil(t, entries)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Line)
	assert.Equal(t, FieldLocalAddress, de.Field)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		fixture   string
		wantLine  int
		wantField Field
		wantErr   error
	}{
		{"tcp_short_row", 3, FieldRow, ErrShortRow},
		{"tcp_bad_address", 3, FieldRemoteAddress, nil},
	}
	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			entries, err := parseFixture(t, tt.fixture, TCP)
			require.Error(t, err)
			assert.Nil(t, entries)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.wantLine, de.Line)
			assert.Equal(t, tt.wantField, de.Field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	entries, err := Parse(strings.NewReader("  sl  local_address rem_address   st\n"), TCP)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = Parse(strings.NewReader(""), TCP)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseHeaderIsNotValidated(t *testing.T) {
	in := "0: garbage that would never decode\n" +
		"   0: 0100007F:0019 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 17540\n"
	entries, err := Parse(strings.NewReader(in), TCP)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseBlankLineIsMalformed(t *testing.T) {
	in := "header\n\n"
	_, err := Parse(strings.NewReader(in), UDP)
	assert.ErrorIs(t, err, ErrShortRow)
}

func TestParseReadError(t *testing.T) {
	boom := errors.New("boom")

	entries, err := Parse(iotest.ErrReader(boom), TCP)
	assert.Nil(t, entries)

	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.ErrorIs(t, err, boom)
}

func TestDecodeRowFields(t *testing.T) {
	good := Tokenize("0: 0100007F:0019 00000000:0000 0A 00000000:00000000 00:00000000 00000000 1000")

	tests := []struct {
		name    string
		replace int
		token   string
		field   Field
	}{
		{"local without port", 1, "0100007F", FieldLocal},
		{"remote without port", 2, "00000000", FieldRemote},
		{"local port not hex", 1, "0100007F:00ZZ", FieldLocalPort},
		{"remote port not hex", 2, "00000000:", FieldRemotePort},
		{"state not hex", 3, "XY", FieldState},
		{"state overflow", 3, "1FFFFFFFF", FieldState},
		{"uid not decimal", 7, "0A", FieldUID},
		{"uid overflow", 7, "4294967296", FieldUID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := append([]string(nil), good...)
			tokens[tt.replace] = tt.token

			_, err := DecodeRow(tokens, TCP)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
			assert.Zero(t, de.Line)
		})
	}

	e, err := DecodeRow(good, TCP)
	require.NoError(t, err)
	assert.Equal(t, int32(1000), e.UID)

	_, err = DecodeRow(good[:7], TCP)
	assert.ErrorIs(t, err, ErrShortRow)

	var ne *strconv.NumError
	_, err = DecodeRow(append(good[:7:7], "x"), TCP)
	assert.ErrorAs(t, err, &ne)
}
