package mcbpx

import "encoding/binary"

// OpsTap implements the TAP replication extension: stream registration
// from the consumer side, and the codec for the messages a producer
// pushes down an established stream.
type OpsTap struct {
}

func (o OpsTap) decodeCommonError(resp *Packet) error {
	return StatusToError(resp.Status)
}

type TapConnectRequest struct {
	// Name identifies the stream; reconnecting with the same name resumes
	// the registered client state.
	Name  string
	Flags TapConnectFlags

	// BackfillSince is required when Flags carries the backfill bit.
	BackfillSince uint64

	// ClientID is required when Flags carries the registered-client bit.
	ClientID uint8

	// VbucketList is required when Flags carries the list-vbuckets bit.
	VbucketList []uint16
}

type TapConnectResponse struct {
}

// TapConnect opens a TAP stream.  On success the server starts pushing
// stream messages; the callback fires only if the server rejects the
// stream request.
func (o OpsTap) TapConnect(d Dispatcher, req *TapConnectRequest, cb func(*TapConnectResponse, error)) (PendingOp, error) {
	extrasBuf := TapConnectExtras{Flags: req.Flags}.Append(nil)

	var payloads []TapFlagPayload
	if req.Flags&TapConnectFlagBackfill != 0 {
		payloads = append(payloads, TapBackfillSince(req.BackfillSince))
	}
	if req.Flags&TapConnectFlagRegisteredClient != 0 {
		payloads = append(payloads, TapRegisteredClient(req.ClientID))
	}

	valueBuf, err := AppendTapFlagPayloads(req.Flags, payloads, nil)
	if err != nil {
		return nil, err
	}

	if req.Flags&TapConnectFlagListVbuckets != 0 {
		valueBuf = binary.BigEndian.AppendUint16(valueBuf, uint16(len(req.VbucketList)))
		for _, vbID := range req.VbucketList {
			valueBuf = binary.BigEndian.AppendUint16(valueBuf, vbID)
		}
	}

	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeTapConnect,
		Key:    []byte(req.Name),
		Value:  valueBuf,
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

		cb(&TapConnectResponse{}, nil)
		return false
	})
}

type DeregisterTapClientRequest struct {
	Name string
}

type DeregisterTapClientResponse struct {
}

// DeregisterTapClient drops the server-side state held for a registered
// TAP client name.
func (o OpsTap) DeregisterTapClient(d Dispatcher, req *DeregisterTapClientRequest, cb func(*DeregisterTapClientResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeDeregisterTapClient,
		Key:    []byte(req.Name),
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&DeregisterTapClientResponse{}, nil)
		return false
	})
}

type ResetReplicationChainRequest struct {
}

type ResetReplicationChainResponse struct {
}

func (o OpsTap) ResetReplicationChain(d Dispatcher, req *ResetReplicationChainRequest, cb func(*ResetReplicationChainResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeResetReplicationChain,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeCommonError(resp))
			return false
		}

		cb(&ResetReplicationChainResponse{}, nil)
		return false
	})
}

// TapMutation is a mutation pushed down a TAP stream.
type TapMutation struct {
	VbucketID      uint16
	Flags          TapMessageFlags
	TTL            uint8
	ItemFlags      uint32
	Expiry         uint32
	EngineSpecific []byte
	Key            []byte
	Value          []byte
	Cas            uint64
	Datatype       uint8
}

func (o OpsTap) EncodeMutation(m *TapMutation, opaque uint32) (*Packet, error) {
	extrasBuf := TapMutationExtras{
		Flags:          m.Flags,
		TTL:            m.TTL,
		ItemFlags:      m.ItemFlags,
		Expiry:         m.Expiry,
		EngineSpecific: m.EngineSpecific,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTapMutation,
		Key:       m.Key,
		Value:     m.Value,
		VbucketID: m.VbucketID,
		Datatype:  m.Datatype,
		Cas:       m.Cas,
		Opaque:    opaque,
		Extras:    extrasBuf,
	}, nil
}

func (o OpsTap) DecodeMutation(pak *Packet) (*TapMutation, error) {
	if pak.OpCode != OpCodeTapMutation {
		return nil, protocolError{"not a tap mutation"}
	}

	extras, err := DecodeTapMutationExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	return &TapMutation{
		VbucketID:      pak.VbucketID,
		Flags:          extras.Flags,
		TTL:            extras.TTL,
		ItemFlags:      extras.ItemFlags,
		Expiry:         extras.Expiry,
		EngineSpecific: extras.EngineSpecific,
		Key:            pak.Key,
		Value:          pak.Value,
		Cas:            pak.Cas,
		Datatype:       pak.Datatype,
	}, nil
}

// TapDeletion is a deletion pushed down a TAP stream.
type TapDeletion struct {
	VbucketID      uint16
	Flags          TapMessageFlags
	TTL            uint8
	EngineSpecific []byte
	Key            []byte
	Cas            uint64
}

func (o OpsTap) EncodeDeletion(m *TapDeletion, opaque uint32) (*Packet, error) {
	extrasBuf := TapExtras{
		Flags:          m.Flags,
		TTL:            m.TTL,
		EngineSpecific: m.EngineSpecific,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTapDelete,
		Key:       m.Key,
		VbucketID: m.VbucketID,
		Cas:       m.Cas,
		Opaque:    opaque,
		Extras:    extrasBuf,
	}, nil
}

func (o OpsTap) DecodeDeletion(pak *Packet) (*TapDeletion, error) {
	if pak.OpCode != OpCodeTapDelete {
		return nil, protocolError{"not a tap deletion"}
	}

	extras, err := DecodeTapExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	return &TapDeletion{
		VbucketID:      pak.VbucketID,
		Flags:          extras.Flags,
		TTL:            extras.TTL,
		EngineSpecific: extras.EngineSpecific,
		Key:            pak.Key,
		Cas:            pak.Cas,
	}, nil
}

// TapFlush is a flush notification pushed down a TAP stream.
type TapFlush struct {
	VbucketID      uint16
	Flags          TapMessageFlags
	TTL            uint8
	EngineSpecific []byte
}

func (o OpsTap) EncodeFlush(m *TapFlush, opaque uint32) (*Packet, error) {
	extrasBuf := TapExtras{
		Flags:          m.Flags,
		TTL:            m.TTL,
		EngineSpecific: m.EngineSpecific,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTapFlush,
		VbucketID: m.VbucketID,
		Opaque:    opaque,
		Extras:    extrasBuf,
	}, nil
}

func (o OpsTap) DecodeFlush(pak *Packet) (*TapFlush, error) {
	if pak.OpCode != OpCodeTapFlush {
		return nil, protocolError{"not a tap flush"}
	}

	extras, err := DecodeTapExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	return &TapFlush{
		VbucketID:      pak.VbucketID,
		Flags:          extras.Flags,
		TTL:            extras.TTL,
		EngineSpecific: extras.EngineSpecific,
	}, nil
}

// TapOpaqueMessage is a control message pushed down a TAP stream.  The
// control code travels in the engine-specific section.
type TapOpaqueMessage struct {
	VbucketID uint16
	Flags     TapMessageFlags
	TTL       uint8
	Code      TapOpaqueCode
}

func (o OpsTap) EncodeOpaque(m *TapOpaqueMessage, opaque uint32) (*Packet, error) {
	engBuf := binary.BigEndian.AppendUint32(nil, uint32(m.Code))

	extrasBuf := TapExtras{
		Flags:          m.Flags,
		TTL:            m.TTL,
		EngineSpecific: engBuf,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTapOpaque,
		VbucketID: m.VbucketID,
		Opaque:    opaque,
		Extras:    extrasBuf,
	}, nil
}

func (o OpsTap) DecodeOpaque(pak *Packet) (*TapOpaqueMessage, error) {
	if pak.OpCode != OpCodeTapOpaque {
		return nil, protocolError{"not a tap opaque message"}
	}

	extras, err := DecodeTapExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	if len(extras.EngineSpecific) != 4 {
		return nil, protocolError{"bad tap opaque code length"}
	}

	return &TapOpaqueMessage{
		VbucketID: pak.VbucketID,
		Flags:     extras.Flags,
		TTL:       extras.TTL,
		Code:      TapOpaqueCode(binary.BigEndian.Uint32(extras.EngineSpecific)),
	}, nil
}

// TapVbucketSet pushes a vbucket state transition down a TAP stream
// during takeover.  The new state travels in the value.
type TapVbucketSet struct {
	VbucketID uint16
	Flags     TapMessageFlags
	TTL       uint8
	State     VbucketState
}

func (o OpsTap) EncodeVbucketSet(m *TapVbucketSet, opaque uint32) (*Packet, error) {
	extrasBuf := TapExtras{
		Flags: m.Flags,
		TTL:   m.TTL,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeTapVbucketSet,
		VbucketID: m.VbucketID,
		Opaque:    opaque,
		Extras:    extrasBuf,
		Value:     binary.BigEndian.AppendUint32(nil, uint32(m.State)),
	}, nil
}

func (o OpsTap) DecodeVbucketSet(pak *Packet) (*TapVbucketSet, error) {
	if pak.OpCode != OpCodeTapVbucketSet {
		return nil, protocolError{"not a tap vbucket set"}
	}

	extras, err := DecodeTapExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	if len(pak.Value) != 4 {
		return nil, protocolError{"bad tap vbucket state length"}
	}

	return &TapVbucketSet{
		VbucketID: pak.VbucketID,
		Flags:     extras.Flags,
		TTL:       extras.TTL,
		State:     VbucketState(binary.BigEndian.Uint32(pak.Value)),
	}, nil
}

// TapCheckpoint marks a checkpoint boundary in a TAP stream.
type TapCheckpoint struct {
	VbucketID    uint16
	Flags        TapMessageFlags
	TTL          uint8
	CheckpointID uint64
}

func (o OpsTap) EncodeCheckpointStart(m *TapCheckpoint, opaque uint32) (*Packet, error) {
	return o.encodeCheckpoint(OpCodeTapCheckpointStart, m, opaque)
}

func (o OpsTap) EncodeCheckpointEnd(m *TapCheckpoint, opaque uint32) (*Packet, error) {
	return o.encodeCheckpoint(OpCodeTapCheckpointEnd, m, opaque)
}

func (o OpsTap) encodeCheckpoint(opCode OpCode, m *TapCheckpoint, opaque uint32) (*Packet, error) {
	extrasBuf := TapExtras{
		Flags: m.Flags,
		TTL:   m.TTL,
	}.Append(nil)

	return &Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		VbucketID: m.VbucketID,
		Opaque:    opaque,
		Extras:    extrasBuf,
		Value:     binary.BigEndian.AppendUint64(nil, m.CheckpointID),
	}, nil
}

func (o OpsTap) DecodeCheckpoint(pak *Packet) (*TapCheckpoint, error) {
	if pak.OpCode != OpCodeTapCheckpointStart && pak.OpCode != OpCodeTapCheckpointEnd {
		return nil, protocolError{"not a tap checkpoint message"}
	}

	extras, err := DecodeTapExtras(pak.Extras)
	if err != nil {
		return nil, err
	}

	if len(pak.Value) != 8 {
		return nil, protocolError{"bad tap checkpoint id length"}
	}

	return &TapCheckpoint{
		VbucketID:    pak.VbucketID,
		Flags:        extras.Flags,
		TTL:          extras.TTL,
		CheckpointID: binary.BigEndian.Uint64(pak.Value),
	}, nil
}

// EncodeAck builds the acknowledging response for a stream message that
// carried the ack flag.  The opcode and opaque of the message are echoed
// back with the given status.
func (o OpsTap) EncodeAck(msg *Packet, status Status) *Packet {
	return &Packet{
		Magic:  MagicRes,
		OpCode: msg.OpCode,
		Opaque: msg.Opaque,
		Status: status,
	}
}
