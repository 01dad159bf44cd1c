package mcbpx

import "encoding/binary"

// OpsCrud implements the key-value operations of the protocol.  Each
// operation builds a request packet, hands it to the dispatcher and
// decodes the matching response through the supplied callback.
type OpsCrud struct {
}

func (o OpsCrud) decodeCommonError(resp *Packet) error {
	return StatusToError(resp.Status)
}

type GetRequest struct {
	Key       []byte
	VbucketID uint16
}

type GetResponse struct {
	Cas      uint64
	Flags    uint32
	Value    []byte
	Datatype uint8
}

func (o OpsCrud) Get(d Dispatcher, req *GetRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	return o.get(d, OpCodeGet, req, cb)
}

// GetQ is the quiet variant; the server only responds on a miss or error.
func (o OpsCrud) GetQ(d Dispatcher, req *GetRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	return o.get(d, OpCodeGetQ, req, cb)
}

// GetReplica reads a key from a replica vbucket.
func (o OpsCrud) GetReplica(d Dispatcher, req *GetRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	return o.get(d, OpCodeGetReplica, req, cb)
}

func (o OpsCrud) get(d Dispatcher, opCode OpCode, req *GetRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
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

		if len(resp.Extras) != 4 {
			cb(nil, protocolError{"bad extras length"})
			return false
		}

		cb(&GetResponse{
			Cas:      resp.Cas,
			Flags:    binary.BigEndian.Uint32(resp.Extras[0:]),
			Value:    resp.Value,
			Datatype: resp.Datatype,
		}, nil)
		return false
	})
}

type GetLockedRequest struct {
	Key       []byte
	VbucketID uint16
	LockTime  uint32
}

// GetLocked reads a key and locks it against mutation for LockTime seconds.
func (o OpsCrud) GetLocked(d Dispatcher, req *GetLockedRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	extrasBuf := TouchExtras{Expiry: req.LockTime}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeGetLocked,
		Key:       req.Key,
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

		if len(resp.Extras) != 4 {
			cb(nil, protocolError{"bad extras length"})
			return false
		}

		cb(&GetResponse{
			Cas:      resp.Cas,
			Flags:    binary.BigEndian.Uint32(resp.Extras[0:]),
			Value:    resp.Value,
			Datatype: resp.Datatype,
		}, nil)
		return false
	})
}

type TouchRequest struct {
	Key       []byte
	VbucketID uint16
	Expiry    uint32
}

type TouchResponse struct {
	Cas uint64
}

func (o OpsCrud) Touch(d Dispatcher, req *TouchRequest, cb func(*TouchResponse, error)) (PendingOp, error) {
	extrasBuf := TouchExtras{Expiry: req.Expiry}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTouch,
		Key:       req.Key,
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

		cb(&TouchResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

// GetAndTouch reads a key and updates its expiry in one round trip.
func (o OpsCrud) GetAndTouch(d Dispatcher, req *TouchRequest, cb func(*GetResponse, error)) (PendingOp, error) {
	extrasBuf := TouchExtras{Expiry: req.Expiry}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeGAT,
		Key:       req.Key,
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

		if len(resp.Extras) != 4 {
			cb(nil, protocolError{"bad extras length"})
			return false
		}

		cb(&GetResponse{
			Cas:      resp.Cas,
			Flags:    binary.BigEndian.Uint32(resp.Extras[0:]),
			Value:    resp.Value,
			Datatype: resp.Datatype,
		}, nil)
		return false
	})
}

type StoreRequest struct {
	Key       []byte
	VbucketID uint16
	Flags     uint32
	Expiry    uint32
	Value     []byte
	Datatype  uint8
	Cas       uint64
}

type StoreResponse struct {
	Cas uint64
}

func (o OpsCrud) Set(d Dispatcher, req *StoreRequest, cb func(*StoreResponse, error)) (PendingOp, error) {
	return o.store(d, OpCodeSet, req, cb)
}

// SetQ is the quiet variant; the server only responds on error.
func (o OpsCrud) SetQ(d Dispatcher, req *StoreRequest, cb func(*StoreResponse, error)) (PendingOp, error) {
	return o.store(d, OpCodeSetQ, req, cb)
}

func (o OpsCrud) Add(d Dispatcher, req *StoreRequest, cb func(*StoreResponse, error)) (PendingOp, error) {
	return o.store(d, OpCodeAdd, req, cb)
}

func (o OpsCrud) Replace(d Dispatcher, req *StoreRequest, cb func(*StoreResponse, error)) (PendingOp, error) {
	return o.store(d, OpCodeReplace, req, cb)
}

func (o OpsCrud) store(d Dispatcher, opCode OpCode, req *StoreRequest, cb func(*StoreResponse, error)) (PendingOp, error) {
	extrasBuf := SetExtras{
		Flags:  req.Flags,
		Expiry: req.Expiry,
	}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
		Value:     req.Value,
		VbucketID: req.VbucketID,
		Datatype:  req.Datatype,
		Cas:       req.Cas,
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

		cb(&StoreResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

type AdjoinRequest struct {
	Key       []byte
	VbucketID uint16
	Value     []byte
	Cas       uint64
}

type AdjoinResponse struct {
	Cas uint64
}

func (o OpsCrud) Append(d Dispatcher, req *AdjoinRequest, cb func(*AdjoinResponse, error)) (PendingOp, error) {
	return o.adjoin(d, OpCodeAppend, req, cb)
}

func (o OpsCrud) Prepend(d Dispatcher, req *AdjoinRequest, cb func(*AdjoinResponse, error)) (PendingOp, error) {
	return o.adjoin(d, OpCodePrepend, req, cb)
}

func (o OpsCrud) adjoin(d Dispatcher, opCode OpCode, req *AdjoinRequest, cb func(*AdjoinResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
		Value:     req.Value,
		VbucketID: req.VbucketID,
		Cas:       req.Cas,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&AdjoinResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

type DeleteRequest struct {
	Key       []byte
	VbucketID uint16
	Cas       uint64
}

type DeleteResponse struct {
	Cas uint64
}

func (o OpsCrud) Delete(d Dispatcher, req *DeleteRequest, cb func(*DeleteResponse, error)) (PendingOp, error) {
	return o.delete(d, OpCodeDelete, req, cb)
}

// DeleteQ is the quiet variant; the server only responds on error.
func (o OpsCrud) DeleteQ(d Dispatcher, req *DeleteRequest, cb func(*DeleteResponse, error)) (PendingOp, error) {
	return o.delete(d, OpCodeDeleteQ, req, cb)
}

func (o OpsCrud) delete(d Dispatcher, opCode OpCode, req *DeleteRequest, cb func(*DeleteResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
		VbucketID: req.VbucketID,
		Cas:       req.Cas,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&DeleteResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

type CounterRequest struct {
	Key       []byte
	VbucketID uint16
	Delta     uint64
	Initial   uint64
	Expiry    uint32

	// NoCreate requests the do-not-create-on-miss behaviour instead of
	// seeding the counter with Initial.
	NoCreate bool
}

type CounterResponse struct {
	Cas   uint64
	Value uint64
}

func (o OpsCrud) Increment(d Dispatcher, req *CounterRequest, cb func(*CounterResponse, error)) (PendingOp, error) {
	return o.counter(d, OpCodeIncrement, req, cb)
}

func (o OpsCrud) Decrement(d Dispatcher, req *CounterRequest, cb func(*CounterResponse, error)) (PendingOp, error) {
	return o.counter(d, OpCodeDecrement, req, cb)
}

func (o OpsCrud) counter(d Dispatcher, opCode OpCode, req *CounterRequest, cb func(*CounterResponse, error)) (PendingOp, error) {
	extrasBuf := CounterExtras{
		Delta:    req.Delta,
		Initial:  req.Initial,
		Expiry:   req.Expiry,
		NoCreate: req.NoCreate,
	}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
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

		if len(resp.Value) != 8 {
			cb(nil, protocolError{"bad counter value length"})
			return false
		}

		cb(&CounterResponse{
			Cas:   resp.Cas,
			Value: binary.BigEndian.Uint64(resp.Value[0:]),
		}, nil)
		return false
	})
}

type EvictKeyRequest struct {
	Key       []byte
	VbucketID uint16
}

type EvictKeyResponse struct {
}

// EvictKey pushes a resident item out of memory, leaving it on disk.
func (o OpsCrud) EvictKey(d Dispatcher, req *EvictKeyRequest, cb func(*EvictKeyResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeEvictKey,
		Key:       req.Key,
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

		cb(&EvictKeyResponse{}, nil)
		return false
	})
}

type ObserveRequest struct {
	Key       []byte
	VbucketID uint16
}

type ObserveResponse struct {
	KeyState uint8
	Cas      uint64
}

// Observe reports the persistence and replication state of a key.  The
// key travels in the request body rather than the key field, prefixed
// with its vbucket and length.
func (o OpsCrud) Observe(d Dispatcher, req *ObserveRequest, cb func(*ObserveResponse, error)) (PendingOp, error) {
	valueBuf := make([]byte, 0, 4+len(req.Key))
	valueBuf = binary.BigEndian.AppendUint16(valueBuf, req.VbucketID)
	valueBuf = binary.BigEndian.AppendUint16(valueBuf, uint16(len(req.Key)))
	valueBuf = append(valueBuf, req.Key...)

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeObserve,
		Value:     valueBuf,
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

		if len(resp.Value) < 4 {
			cb(nil, protocolError{"bad observe value length"})
			return false
		}

		keyLen := int(binary.BigEndian.Uint16(resp.Value[2:]))
		if len(resp.Value) != 4+keyLen+9 {
			cb(nil, protocolError{"bad observe value length"})
			return false
		}

		cb(&ObserveResponse{
			KeyState: resp.Value[4+keyLen],
			Cas:      binary.BigEndian.Uint64(resp.Value[4+keyLen+1:]),
		}, nil)
		return false
	})
}
