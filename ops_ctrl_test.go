package mcbpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsCtrlSetVbucketState(t *testing.T) {
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

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.SetVbucketState, dispatcher, &SetVbucketStateRequest{
		VbucketID: 17,
		State:     VbucketStateReplica,
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	assert.Equal(t, OpCodeSetVbucketState, sent.OpCode)
	assert.Equal(t, uint16(17), sent.VbucketID)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, sent.Extras)
}

func TestOpsCtrlGetVbucketState(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
				Value:  []byte{0x00, 0x00, 0x00, 0x03},
			}, nil
		},
	}

	res, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.GetVbucketState, dispatcher, &GetVbucketStateRequest{
		VbucketID: 17,
	})
	require.NoError(t, err)
	assert.Equal(t, VbucketStatePending, res.State)
}

func TestOpsCtrlGetVbucketStateBadValue(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusSuccess,
				Value:  []byte{0x01},
			}, nil
		},
	}

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.GetVbucketState, dispatcher, &GetVbucketStateRequest{})
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestOpsCtrlDeleteVbucketNotMyVbucket(t *testing.T) {
	dispatcher := &testDispatcher{
		replyFn: func(req *Packet) (*Packet, error) {
			return &Packet{
				Magic:  MagicRes,
				OpCode: req.OpCode,
				Opaque: req.Opaque,
				Status: StatusNotMyVBucket,
			}, nil
		},
	}

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.DeleteVbucket, dispatcher, &DeleteVbucketRequest{
		VbucketID: 99,
	})
	assert.ErrorIs(t, err, ErrNotMyVbucket)
}

func TestOpsCtrlCompactDB(t *testing.T) {
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

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.CompactDB, dispatcher, &CompactDBRequest{
		VbucketID:      2,
		PurgeBeforeTs:  100,
		PurgeBeforeSeq: 200,
		DropDeletes:    true,
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.packets, 1)
	extras, err := DecodeCompactDBExtras(dispatcher.packets[0].Extras)
	require.NoError(t, err)
	assert.Equal(t, CompactDBExtras{
		PurgeBeforeTs:  100,
		PurgeBeforeSeq: 200,
		DropDeletes:    true,
	}, extras)
}

func TestOpsCtrlStopPersistence(t *testing.T) {
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

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.StopPersistence, dispatcher, &StopPersistenceRequest{})
	require.NoError(t, err)
	require.Len(t, dispatcher.packets, 1)
	assert.Equal(t, OpCodeStopPersistence, dispatcher.packets[0].OpCode)
}

func TestOpsCtrlStartPersistence(t *testing.T) {
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

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.StartPersistence, dispatcher, &StartPersistenceRequest{})
	require.NoError(t, err)
	require.Len(t, dispatcher.packets, 1)
	assert.Equal(t, OpCodeStartPersistence, dispatcher.packets[0].OpCode)
}

func TestOpsCtrlSetParam(t *testing.T) {
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

	_, err := syncUnaryCall(OpsCtrl{}, OpsCtrl.SetParam, dispatcher, &SetParamRequest{
		Param: EngineParamCheckpoint,
		Name:  "chk_max_items",
		Value: "5000",
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.packets, 1)
	sent := dispatcher.packets[0]
	assert.Equal(t, OpCodeSetParam, sent.OpCode)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x03}, sent.Extras)
	assert.Equal(t, []byte("chk_max_items"), sent.Key)
	assert.Equal(t, []byte("5000"), sent.Value)
}
