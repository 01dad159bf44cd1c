package mcbpx

import (
	"encoding/binary"
	"math"
)

// HeaderLen is the fixed size of a packet header.  It is identical for
// requests and responses.
const HeaderLen = 24

// Packet represents a single request or response.
type Packet struct {
	Magic     Magic
	OpCode    OpCode
	Datatype  uint8
	VbucketID uint16 // Only valid for request packets
	Status    Status // Only valid for response packets
	Opaque    uint32
	Cas       uint64
	Extras    []byte
	Key       []byte
	Value     []byte
}

// EncodeHeader packs the 24-byte header for pak into hdr, computing the
// length fields from the extras, key and value carried by the packet.
// The magic byte alone decides whether the vbucket or the status field
// is written; specifying the other is an error.
func EncodeHeader(hdr []byte, pak *Packet) error {
	if len(hdr) < HeaderLen {
		return ErrMalformedHeader
	}

	extrasLen := len(pak.Extras)
	keyLen := len(pak.Key)
	valueLen := len(pak.Value)
	payloadLen := extrasLen + keyLen + valueLen

	if keyLen > math.MaxUint16 {
		return ErrKeyTooLong
	}
	if extrasLen > math.MaxUint8 {
		return ErrExtrasTooLong
	}
	if payloadLen > math.MaxUint32 {
		return ErrBodyTooLong
	}

	hdr[0] = uint8(pak.Magic)
	hdr[1] = uint8(pak.OpCode)
	binary.BigEndian.PutUint16(hdr[2:], uint16(keyLen))
	hdr[4] = uint8(extrasLen)
	hdr[5] = pak.Datatype

	switch pak.Magic {
	case MagicReq:
		if pak.Status != 0 {
			return protocolError{"cannot specify status in a request packet"}
		}

		binary.BigEndian.PutUint16(hdr[6:], pak.VbucketID)
	case MagicRes:
		if pak.VbucketID != 0 {
			return protocolError{"cannot specify vbucket in a response packet"}
		}

		binary.BigEndian.PutUint16(hdr[6:], uint16(pak.Status))
	default:
		return ErrUnknownMagic
	}

	binary.BigEndian.PutUint32(hdr[8:], uint32(payloadLen))
	binary.BigEndian.PutUint32(hdr[12:], pak.Opaque)
	binary.BigEndian.PutUint64(hdr[16:], pak.Cas)

	return nil
}

// DecodeHeader unpacks a 24-byte header into pak and returns the extras,
// key and value lengths declared by it.  The payload slices of pak are
// not touched; slicing the body is the reader's job.  The magic byte is
// the sole authority for whether bytes 6..7 are a vbucket id or a status.
func DecodeHeader(hdr []byte, pak *Packet) (extrasLen, keyLen, valueLen int, err error) {
	if len(hdr) < HeaderLen {
		return 0, 0, 0, ErrMalformedHeader
	}

	magic := Magic(hdr[0])
	if magic != MagicReq && magic != MagicRes {
		return 0, 0, 0, ErrUnknownMagic
	}

	pak.Magic = magic
	pak.OpCode = OpCode(hdr[1])
	keyLen = int(binary.BigEndian.Uint16(hdr[2:]))
	extrasLen = int(hdr[4])
	pak.Datatype = hdr[5]

	if magic == MagicReq {
		pak.VbucketID = binary.BigEndian.Uint16(hdr[6:])
		pak.Status = 0
	} else {
		pak.VbucketID = 0
		pak.Status = Status(binary.BigEndian.Uint16(hdr[6:]))
	}

	payloadLen := int(binary.BigEndian.Uint32(hdr[8:]))
	pak.Opaque = binary.BigEndian.Uint32(hdr[12:])
	pak.Cas = binary.BigEndian.Uint64(hdr[16:])

	valueLen = payloadLen - extrasLen - keyLen
	return extrasLen, keyLen, valueLen, nil
}
