package mcbpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTapFlagPayloads(t *testing.T) {
	flags := TapConnectFlagBackfill | TapConnectFlagRegisteredClient | TapConnectFlagDump

	buf, err := AppendTapFlagPayloads(flags, []TapFlagPayload{
		TapRegisteredClient(7),
		TapBackfillSince(0x0102030405060708),
	}, nil)
	require.NoError(t, err)

	// backfill payload travels before the registered-client payload
	assert.Equal(t, []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x07,
	}, buf)

	payloads, n, err := DecodeTapFlagPayloads(flags, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	require.Len(t, payloads, 2)
	assert.Equal(t, TapBackfillSince(0x0102030405060708), payloads[0])
	assert.Equal(t, TapRegisteredClient(7), payloads[1])
}

func TestTapFlagPayloadsValidation(t *testing.T) {
	// payload supplied for an unset flag
	_, err := AppendTapFlagPayloads(TapConnectFlagDump, []TapFlagPayload{
		TapBackfillSince(1),
	}, nil)
	assert.ErrorIs(t, err, ErrProtocol)

	// flag set but payload missing
	_, err = AppendTapFlagPayloads(TapConnectFlagBackfill, nil, nil)
	assert.ErrorIs(t, err, ErrProtocol)

	// duplicate payload for the same flag
	_, err = AppendTapFlagPayloads(TapConnectFlagBackfill, []TapFlagPayload{
		TapBackfillSince(1),
		TapBackfillSince(2),
	}, nil)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestTapExtrasRoundtrip(t *testing.T) {
	in := TapExtras{
		Flags:          TapMessageFlagAck,
		TTL:            255,
		EngineSpecific: []byte{0xaa, 0xbb},
	}

	buf := in.Append(nil)
	require.Len(t, buf, 10)
	assert.Equal(t, []byte{
		0x00, 0x02, // engine-specific length
		0x00, 0x01, // flags
		0xff,             // ttl
		0x00, 0x00, 0x00, // reserved
		0xaa, 0xbb,
	}, buf)

	out, err := DecodeTapExtras(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// declared engine-specific length must match the trailing bytes
	_, err = DecodeTapExtras(buf[:9])
	assert.ErrorIs(t, err, ErrExtrasLengthMismatch)
	_, err = DecodeTapExtras(append(buf, 0xcc))
	assert.ErrorIs(t, err, ErrExtrasLengthMismatch)
}

func TestTapMutationExtrasRoundtrip(t *testing.T) {
	in := TapMutationExtras{
		Flags:     TapMessageFlagNoValue,
		TTL:       1,
		ItemFlags: 0xdeadbeef,
		Expiry:    3600,
	}

	buf := in.Append(nil)
	require.Len(t, buf, 16)

	out, err := DecodeTapMutationExtras(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	in.EngineSpecific = []byte{0x01, 0x02, 0x03}
	buf = in.Append(nil)
	require.Len(t, buf, 19)

	out, err = DecodeTapMutationExtras(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
