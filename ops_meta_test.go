package mcbpx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsMetaGetMeta(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			extras := make([]byte, 20)
			binary.BigEndian.PutUint32(extras[0:], 1)       // deleted
			binary.BigEndian.PutUint32(extras[4:], 0xbeef)  // flags
			binary.BigEndian.PutUint32(extras[8:], 3600)    // expiry
			binary.BigEndian.PutUint64(extras[12:], 0x1234) // seqno
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
				Extras: extras,
				Cas:    0x5678,
			}, nil
		},
	}

	res, err := syncUnaryCall(OpsMeta{}, OpsMeta.GetMeta, dispatcher, &GetMetaRequest{
		Key:       []byte("doc-1"),
		VbucketID: 4,
	})
	require.NoError(t, err)

	assert.True(t, res.Deleted)
	assert.Equal(t, uint32(0xbeef), res.Flags)
	assert.Equal(t, uint32(3600), res.Expiry)
	assert.Equal(t, uint64(0x1234), res.SeqNo)
	assert.Equal(t, uint64(0x5678), res.Cas)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	assert.Equal(t, OpCodeGetMeta, sent.OpCode)
	assert.Equal(t, []byte("doc-1"), sent.Key)
	assert.Empty(t, sent.Extras)
}

func TestOpsMetaGetMetaQuiet(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusKeyNotFound,
			}, nil
		},
	}

	_, err := syncUnaryCall(OpsMeta{}, OpsMeta.GetMeta, dispatcher, &GetMetaRequest{
		Key:   []byte("missing"),
		Quiet: true,
	})
	assert.ErrorIs(t, err, ErrDocNotFound)

	require.Len(t, dispatcher.packets, 1)
	assert.Equal(t, OpCodeGetQMeta, dispatcher.packets[0].OpCode)
}

func TestOpsMetaSetWithMeta(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
				Cas:    0x99,
			}, nil
		},
	}

	res, err := syncUnaryCall(OpsMeta{}, OpsMeta.SetWithMeta, dispatcher, &StoreWithMetaRequest{
		Key:     []byte("doc-1"),
		Value:   []byte("payload"),
		Flags:   7,
		Expiry:  60,
		SeqNo:   100,
		MetaCas: 0xabcdef,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x99), res.Cas)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	assert.Equal(t, OpCodeSetWithMeta, sent.OpCode)
	require.Len(t, sent.Extras, 24)

	flags, expiry, seqNo, cas, options, nmeta, err := DecodeWithMetaExtras(sent.Extras)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), flags)
	assert.Equal(t, uint32(60), expiry)
	assert.Equal(t, uint64(100), seqNo)
	assert.Equal(t, uint64(0xabcdef), cas)
	assert.Equal(t, MetaOpFlag(0), options)
	assert.Equal(t, 0, nmeta)
	assert.Equal(t, []byte("payload"), sent.Value)
}

func TestOpsMetaSetWithMetaOptions(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
			}, nil
		},
	}

	extMeta := []byte{0x01, 0x00, 0x02, 0xaa, 0xbb}

	_, err := syncUnaryCall(OpsMeta{}, OpsMeta.SetWithMeta, dispatcher, &StoreWithMetaRequest{
		Key:          []byte("doc-1"),
		Value:        []byte("payload"),
		Options:      MetaOpFlagSkipConflictResolution,
		ExtendedMeta: extMeta,
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	require.Len(t, sent.Extras, 30)

	_, _, _, _, options, nmeta, err := DecodeWithMetaExtras(sent.Extras)
	require.NoError(t, err)
	assert.Equal(t, MetaOpFlagSkipConflictResolution, options)
	assert.Equal(t, len(extMeta), nmeta)

	// extended metadata trails the document value
	assert.Equal(t, []byte("payload"), sent.Value[:len(sent.Value)-nmeta])
	assert.Equal(t, extMeta, sent.Value[len(sent.Value)-nmeta:])
}

func TestOpsMetaAddWithMetaQuiet(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
			}, nil
		},
	}

	_, err := syncUnaryCall(OpsMeta{}, OpsMeta.AddWithMeta, dispatcher, &StoreWithMetaRequest{
		Key:   []byte("doc-1"),
		Quiet: true,
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.packets, 1)
	assert.Equal(t, OpCodeAddQWithMeta, dispatcher.packets[0].OpCode)
}

func TestOpsMetaDeleteWithMeta(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
				Cas:    0x42,
			}, nil
		},
	}

	res, err := syncUnaryCall(OpsMeta{}, OpsMeta.DeleteWithMeta, dispatcher, &DeleteWithMetaRequest{
		Key:     []byte("doc-1"),
		SeqNo:   5,
		MetaCas: 0x1000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x42), res.Cas)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	assert.Equal(t, OpCodeDelWithMeta, sent.OpCode)
	require.Len(t, sent.Extras, 24)
	assert.Empty(t, sent.Value)
}

func TestExtendedMetaRoundtrip(t *testing.T) {
	revID := []byte{0x00, 0x05, 0xaa, 0xbb}

	blob := EncodeExtendedMeta(revID)
	assert.Equal(t, []byte{0x01, 0x01, 0x00, 0x04, 0x00, 0x05, 0xaa, 0xbb}, blob)

	out, err := DecodeExtendedMeta(blob)
	require.NoError(t, err)
	assert.Equal(t, revID, out)

	_, err = DecodeExtendedMeta([]byte{0x02})
	assert.ErrorIs(t, err, ErrProtocol)

	_, err = DecodeExtendedMeta(blob[:5])
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeWithMetaExtrasLayouts(t *testing.T) {
	base := appendWithMetaExtras(nil, 1, 2, 3, 4, 0, 0)
	require.Len(t, base, 24)

	flags, expiry, seqNo, cas, options, nmeta, err := DecodeWithMetaExtras(base)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), flags)
	assert.Equal(t, uint32(2), expiry)
	assert.Equal(t, uint64(3), seqNo)
	assert.Equal(t, uint64(4), cas)
	assert.Equal(t, MetaOpFlag(0), options)
	assert.Equal(t, 0, nmeta)

	withOptions := appendWithMetaExtras(nil, 1, 2, 3, 4, MetaOpFlagForce, 0)
	require.Len(t, withOptions, 28)
	_, _, _, _, options, _, err = DecodeWithMetaExtras(withOptions)
	require.NoError(t, err)
	assert.Equal(t, MetaOpFlagForce, options)

	withBoth := appendWithMetaExtras(nil, 1, 2, 3, 4, MetaOpFlagForce, 9)
	require.Len(t, withBoth, 30)
	_, _, _, _, options, nmeta, err = DecodeWithMetaExtras(withBoth)
	require.NoError(t, err)
	assert.Equal(t, MetaOpFlagForce, options)
	assert.Equal(t, 9, nmeta)

	_, _, _, _, _, _, err = DecodeWithMetaExtras(make([]byte, 25))
	assert.ErrorIs(t, err, ErrExtrasLengthMismatch)
}
