package mcbpx

import "encoding/binary"

// MetaOpFlag adjusts conflict resolution for with-meta operations.
type MetaOpFlag uint32

const (
	MetaOpFlagForce                  MetaOpFlag = 0x01
	MetaOpFlagForceAccept            MetaOpFlag = 0x02
	MetaOpFlagRegenerateCas          MetaOpFlag = 0x04
	MetaOpFlagSkipConflictResolution MetaOpFlag = 0x08
	MetaOpFlagIsExpiration           MetaOpFlag = 0x10
)

// OpsMeta implements the with-meta extension used by cross-cluster
// replication to carry source-side metadata alongside documents.
type OpsMeta struct {
}

func (o OpsMeta) decodeCommonError(resp *Packet) error {
	return StatusToError(resp.Status)
}

type GetMetaRequest struct {
	Key       []byte
	VbucketID uint16

	// Quiet suppresses the miss response on the wire.
	Quiet bool
}

type GetMetaResponse struct {
	Deleted bool
	Flags   uint32
	Expiry  uint32
	SeqNo   uint64
	Cas     uint64
}

// GetMeta fetches the metadata of a document without its value.  The
// response extras carry the deleted marker, item flags, expiry and
// sequence number; the document cas rides in the header.
func (o OpsMeta) GetMeta(d Dispatcher, req *GetMetaRequest, cb func(*GetMetaResponse, error)) (PendingOp, error) {
	opCode := OpCodeGetMeta
	if req.Quiet {
		opCode = OpCodeGetQMeta
	}

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

		if len(resp.Extras) != 20 {
			cb(nil, protocolError{"bad meta extras length"})
			return false
		}

		cb(&GetMetaResponse{
			Deleted: binary.BigEndian.Uint32(resp.Extras[0:]) != 0,
			Flags:   binary.BigEndian.Uint32(resp.Extras[4:]),
			Expiry:  binary.BigEndian.Uint32(resp.Extras[8:]),
			SeqNo:   binary.BigEndian.Uint64(resp.Extras[12:]),
			Cas:     resp.Cas,
		}, nil)
		return false
	})
}

// appendWithMetaExtras builds the with-meta request extras.  The fixed
// part carries flags, expiry, seqno and cas; the options word and the
// extended metadata length are appended only when used.
func appendWithMetaExtras(buf []byte, flags uint32, expiry uint32, seqNo uint64, cas uint64, options MetaOpFlag, nmeta int) []byte {
	buf = binary.BigEndian.AppendUint32(buf, flags)
	buf = binary.BigEndian.AppendUint32(buf, expiry)
	buf = binary.BigEndian.AppendUint64(buf, seqNo)
	buf = binary.BigEndian.AppendUint64(buf, cas)
	if options != 0 || nmeta > 0 {
		buf = binary.BigEndian.AppendUint32(buf, uint32(options))
	}
	if nmeta > 0 {
		buf = binary.BigEndian.AppendUint16(buf, uint16(nmeta))
	}
	return buf
}

type StoreWithMetaRequest struct {
	Key       []byte
	Value     []byte
	VbucketID uint16
	Datatype  uint8

	// Cas guards the local document; zero skips the check.
	Cas uint64

	Flags  uint32
	Expiry uint32
	SeqNo  uint64

	// MetaCas is the cas assigned by the source cluster.
	MetaCas uint64

	Options MetaOpFlag

	// ExtendedMeta is opaque source metadata carried after the value.
	ExtendedMeta []byte

	Quiet bool
}

type StoreWithMetaResponse struct {
	Cas uint64
}

// SetWithMeta stores a document preserving the metadata assigned by the
// source cluster.
func (o OpsMeta) SetWithMeta(d Dispatcher, req *StoreWithMetaRequest, cb func(*StoreWithMetaResponse, error)) (PendingOp, error) {
	opCode := OpCodeSetWithMeta
	if req.Quiet {
		opCode = OpCodeSetQWithMeta
	}
	return o.storeWithMeta(d, opCode, req, cb)
}

// AddWithMeta stores a document with source metadata, failing if the
// document already exists.
func (o OpsMeta) AddWithMeta(d Dispatcher, req *StoreWithMetaRequest, cb func(*StoreWithMetaResponse, error)) (PendingOp, error) {
	opCode := OpCodeAddWithMeta
	if req.Quiet {
		opCode = OpCodeAddQWithMeta
	}
	return o.storeWithMeta(d, opCode, req, cb)
}

func (o OpsMeta) storeWithMeta(d Dispatcher, opCode OpCode, req *StoreWithMetaRequest, cb func(*StoreWithMetaResponse, error)) (PendingOp, error) {
	extrasBuf := appendWithMetaExtras(nil,
		req.Flags, req.Expiry, req.SeqNo, req.MetaCas,
		req.Options, len(req.ExtendedMeta))

	valueBuf := req.Value
	if len(req.ExtendedMeta) > 0 {
		valueBuf = make([]byte, 0, len(req.Value)+len(req.ExtendedMeta))
		valueBuf = append(valueBuf, req.Value...)
		valueBuf = append(valueBuf, req.ExtendedMeta...)
	}

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
		Value:     valueBuf,
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

		cb(&StoreWithMetaResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

type DeleteWithMetaRequest struct {
	Key       []byte
	VbucketID uint16

	Cas uint64

	Flags  uint32
	Expiry uint32
	SeqNo  uint64

	MetaCas uint64

	Options MetaOpFlag

	ExtendedMeta []byte

	Quiet bool
}

type DeleteWithMetaResponse struct {
	Cas uint64
}

// DeleteWithMeta removes a document preserving the deletion metadata
// assigned by the source cluster.
func (o OpsMeta) DeleteWithMeta(d Dispatcher, req *DeleteWithMetaRequest, cb func(*DeleteWithMetaResponse, error)) (PendingOp, error) {
	opCode := OpCodeDelWithMeta
	if req.Quiet {
		opCode = OpCodeDelQWithMeta
	}

	extrasBuf := appendWithMetaExtras(nil,
		req.Flags, req.Expiry, req.SeqNo, req.MetaCas,
		req.Options, len(req.ExtendedMeta))

	return d.Dispatch(&Packet{
		Magic:     MagicReq,
		OpCode:    opCode,
		Key:       req.Key,
		Value:     req.ExtendedMeta,
		VbucketID: req.VbucketID,
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

		cb(&DeleteWithMetaResponse{
			Cas: resp.Cas,
		}, nil)
		return false
	})
}

const (
	// metaExtVersion is the only defined extended metadata version.
	metaExtVersion = 0x01

	// MetaExtRevID identifies a revision id entry in extended metadata.
	MetaExtRevID = uint8(0x01)
)

// EncodeExtendedMeta builds a version-1 extended metadata blob carrying
// a revision id.  The blob is a version byte followed by typed entries,
// each an id byte, a 16-bit length and the entry data.
func EncodeExtendedMeta(revID []byte) []byte {
	buf := make([]byte, 0, 4+len(revID))
	buf = append(buf, metaExtVersion)
	buf = append(buf, MetaExtRevID)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(revID)))
	return append(buf, revID...)
}

// DecodeExtendedMeta extracts the revision id from a version-1 extended
// metadata blob.  Unknown entry types are skipped.
func DecodeExtendedMeta(buf []byte) ([]byte, error) {
	if len(buf) < 1 || buf[0] != metaExtVersion {
		return nil, protocolError{"unsupported extended metadata version"}
	}

	var revID []byte
	pos := 1
	for pos < len(buf) {
		if len(buf) < pos+3 {
			return nil, protocolError{"truncated extended metadata entry"}
		}
		entryType := buf[pos]
		entryLen := int(binary.BigEndian.Uint16(buf[pos+1:]))
		pos += 3

		if len(buf) < pos+entryLen {
			return nil, protocolError{"truncated extended metadata entry"}
		}
		if entryType == MetaExtRevID {
			revID = buf[pos : pos+entryLen]
		}
		pos += entryLen
	}

	return revID, nil
}

// DecodeWithMetaExtras splits a with-meta request extras section into
// its fixed fields, the optional options word, and the extended
// metadata length.  Accepted layouts are 24, 26, 28 and 30 bytes.
func DecodeWithMetaExtras(buf []byte) (flags uint32, expiry uint32, seqNo uint64, cas uint64, options MetaOpFlag, nmeta int, err error) {
	switch len(buf) {
	case 24:
	case 26:
		nmeta = int(binary.BigEndian.Uint16(buf[24:]))
	case 28:
		options = MetaOpFlag(binary.BigEndian.Uint32(buf[24:]))
	case 30:
		options = MetaOpFlag(binary.BigEndian.Uint32(buf[24:]))
		nmeta = int(binary.BigEndian.Uint16(buf[28:]))
	default:
		return 0, 0, 0, 0, 0, 0, ErrExtrasLengthMismatch
	}

	flags = binary.BigEndian.Uint32(buf[0:])
	expiry = binary.BigEndian.Uint32(buf[4:])
	seqNo = binary.BigEndian.Uint64(buf[8:])
	cas = binary.BigEndian.Uint64(buf[16:])
	return flags, expiry, seqNo, cas, options, nmeta, nil
}
