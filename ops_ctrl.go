package mcbpx

import "encoding/binary"

// OpsCtrl implements the vbucket and engine administration operations.
type OpsCtrl struct {
}

func (o OpsCtrl) decodeCommonError(resp *Packet) error {
	return StatusToError(resp.Status)
}

type SetVbucketStateRequest struct {
	VbucketID uint16
	State     VbucketState
}

type SetVbucketStateResponse struct {
}

func (o OpsCtrl) SetVbucketState(d Dispatcher, req *SetVbucketStateRequest, cb func(*SetVbucketStateResponse, error)) (PendingOp, error) {
	extrasBuf, err := EncodeExtras(OpCodeSetVbucketState, VbucketStateExtras{State: req.State})
	if err != nil {
		return nil, err
	}

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeSetVbucketState,
		VbucketID: req.VbucketID,
		Extras:    extrasBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&SetVbucketStateResponse{}, nil)
		return false
	})
}

type GetVbucketStateRequest struct {
	VbucketID uint16
}

type GetVbucketStateResponse struct {
	State VbucketState
}

func (o OpsCtrl) GetVbucketState(d Dispatcher, req *GetVbucketStateRequest, cb func(*GetVbucketStateResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeGetVbucketState,
		VbucketID: req.VbucketID,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		if len(resp.Value) != 4 {
			cb(nil, protocolError{"bad vbucket state length"})
			return false
		}

		cb(&GetVbucketStateResponse{
			State: VbucketState(binary.BigEndian.Uint32(resp.Value)),
		}, nil)
		return false
	})
}

type DeleteVbucketRequest struct {
	VbucketID uint16
}

type DeleteVbucketResponse struct {
}

func (o OpsCtrl) DeleteVbucket(d Dispatcher, req *DeleteVbucketRequest, cb func(*DeleteVbucketResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeDeleteVbucket,
		VbucketID: req.VbucketID,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&DeleteVbucketResponse{}, nil)
		return false
	})
}

type CompactDBRequest struct {
	VbucketID      uint16
	PurgeBeforeTs  uint64
	PurgeBeforeSeq uint64
	DropDeletes    bool
}

type CompactDBResponse struct {
}

func (o OpsCtrl) CompactDB(d Dispatcher, req *CompactDBRequest, cb func(*CompactDBResponse, error)) (PendingOp, error) {
	extrasBuf, err := EncodeExtras(OpCodeCompactDB, CompactDBExtras{
		PurgeBeforeTs:  req.PurgeBeforeTs,
		PurgeBeforeSeq: req.PurgeBeforeSeq,
		DropDeletes:    req.DropDeletes,
	})
	if err != nil {
		return nil, err
	}

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeCompactDB,
		VbucketID: req.VbucketID,
		Extras:    extrasBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&CompactDBResponse{}, nil)
		return false
	})
}

type StopPersistenceRequest struct {
}

type StopPersistenceResponse struct {
}

func (o OpsCtrl) StopPersistence(d Dispatcher, req *StopPersistenceRequest, cb func(*StopPersistenceResponse, error)) (PendingOp, error) {
	return o.persistence(d, OpCodeStopPersistence, func(err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&StopPersistenceResponse{}, nil)
	})
}

type StartPersistenceRequest struct {
}

type StartPersistenceResponse struct {
}

func (o OpsCtrl) StartPersistence(d Dispatcher, req *StartPersistenceRequest, cb func(*StartPersistenceResponse, error)) (PendingOp, error) {
	return o.persistence(d, OpCodeStartPersistence, func(err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&StartPersistenceResponse{}, nil)
	})
}

func (o OpsCtrl) persistence(d Dispatcher, opCode OpCode, cb func(error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: opCode,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(o.decodeCommonError(resp))
			return false
		}

		cb(nil)
		return false
	})
}

type SetParamRequest struct {
	Param EngineParam
	Name  string
	Value string
}

type SetParamResponse struct {
}

func (o OpsCtrl) SetParam(d Dispatcher, req *SetParamRequest, cb func(*SetParamResponse, error)) (PendingOp, error) {
	extrasBuf, err := EncodeExtras(OpCodeSetParam, SetParamExtras{Param: req.Param})
	if err != nil {
		return nil, err
	}

	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeSetParam,
		Key:    []byte(req.Name),
		Value:  []byte(req.Value),
		Extras: extrasBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&SetParamResponse{}, nil)
		return false
	})
}
