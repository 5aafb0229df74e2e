package procnet

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	m, err := ParseMode(" UDP6 ")
	require.NoError(t, err)
	assert.Equal(t, UDP6, m)

	_, err = ParseMode("raw")
	assert.Error(t, err)

	assert.True(t, TCP6.IsIPv6())
	assert.False(t, UDP.IsIPv6())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "LISTEN", StateName(0x0A))
	assert.Equal(t, "ESTABLISHED", StateName(1))
	assert.Equal(t, "NEW_SYN_RECV", StateName(12))
	assert.Equal(t, "UNKNOWN(0x2A)", StateName(0x2A))
}

func TestEntryJSON(t *testing.T) {
	e := Entry{
		LocalAddress:    netip.MustParseAddr("127.0.0.1"),
		LocalPort:       25,
		RemoteAddress:   netip.IPv4Unspecified(),
		ConnectionState: 0xA,
		UID:             0,
		Mode:            TCP,
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"local_address":"127.0.0.1","local_port":25,"remote_address":"0.0.0.0","remote_port":0,"connection_state":10,"uid":0,"mode":"tcp"}`, string(b))

	var back Entry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, e, back)
}

func TestListening(t *testing.T) {
	tcp := Entry{Mode: TCP, ConnectionState: int32(StateListen), RemoteAddress: netip.IPv4Unspecified()}
	assert.True(t, tcp.Listening())

	tcp.ConnectionState = int32(StateEstablished)
	assert.False(t, tcp.Listening())

	udp := Entry{Mode: UDP, ConnectionState: int32(StateClose), RemoteAddress: netip.IPv4Unspecified()}
	assert.True(t, udp.Listening())

	udp.RemoteAddress = netip.MustParseAddr("8.8.8.8")
	udp.RemotePort = 53
	assert.False(t, udp.Listening())
}
