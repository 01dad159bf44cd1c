package mcbpx

import "encoding/binary"

// TapConnectFlags describes the requested behaviour of a TAP stream.
type TapConnectFlags uint32

const (
	// TapConnectFlagBackfill requests a backfill from a point in time; a
	// 64-bit timestamp payload follows the flags field.
	TapConnectFlagBackfill = TapConnectFlags(0x01)

	// TapConnectFlagDump requests a dump of the current content, closing
	// the stream once everything has been sent.
	TapConnectFlagDump = TapConnectFlags(0x02)

	// TapConnectFlagListVbuckets indicates a list of vbuckets to stream
	// follows the flag payloads.
	TapConnectFlagListVbuckets = TapConnectFlags(0x04)

	// TapConnectFlagTakeoverVbuckets requests ownership transfer of the
	// streamed vbuckets.
	TapConnectFlagTakeoverVbuckets = TapConnectFlags(0x08)

	// TapConnectFlagSupportAck indicates the client will acknowledge
	// stream messages.
	TapConnectFlagSupportAck = TapConnectFlags(0x10)

	// TapConnectFlagRequestKeysOnly requests that values are omitted from
	// mutations.
	TapConnectFlagRequestKeysOnly = TapConnectFlags(0x20)

	// TapConnectFlagCheckpoint requests checkpoint-based streaming.
	TapConnectFlagCheckpoint = TapConnectFlags(0x40)

	// TapConnectFlagRegisteredClient registers a named client; an 8-bit
	// client id payload follows the flags field.
	TapConnectFlagRegisteredClient = TapConnectFlags(0x80)

	// TapConnectFlagFixFlagByteorder indicates the peer encodes item flags
	// in network byte order.
	TapConnectFlagFixFlagByteorder = TapConnectFlags(0x100)
)

// TapMessageFlags describes per-message flags in a TAP stream.
type TapMessageFlags uint16

const (
	// TapMessageFlagAck requests an acknowledgement for this message.
	TapMessageFlagAck = TapMessageFlags(0x01)

	// TapMessageFlagNoValue indicates the value for the key is not
	// included in the packet.
	TapMessageFlagNoValue = TapMessageFlags(0x02)
)

// TapOpaqueCode identifies the control message carried by a TAP opaque packet.
type TapOpaqueCode uint32

const (
	TapOpaqueEnableAutoNack       = TapOpaqueCode(0x00)
	TapOpaqueInitialVbucketStream = TapOpaqueCode(0x01)
	TapOpaqueEnableCheckpointSync = TapOpaqueCode(0x02)
	TapOpaqueOpenCheckpoint       = TapOpaqueCode(0x03)
)

// TapConnectExtras is the extras block for TAP connect requests.
type TapConnectExtras struct {
	Flags TapConnectFlags
}

func (e TapConnectExtras) Append(buf []byte) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(e.Flags))
}

func DecodeTapConnectExtras(buf []byte) (TapConnectExtras, error) {
	if len(buf) != tapConnectExtrasLen {
		return TapConnectExtras{}, ErrExtrasLengthMismatch
	}

	return TapConnectExtras{Flags: TapConnectFlags(binary.BigEndian.Uint32(buf))}, nil
}

// TapFlagPayload is a typed payload demanded by a TAP connect flag bit.
// The payloads travel after the flags field, in flag bit order.
type TapFlagPayload interface {
	ConnectFlag() TapConnectFlags
	appendPayload(buf []byte) []byte
}

// TapBackfillSince is the 64-bit timestamp payload of the backfill flag.
type TapBackfillSince uint64

func (p TapBackfillSince) ConnectFlag() TapConnectFlags { return TapConnectFlagBackfill }

func (p TapBackfillSince) appendPayload(buf []byte) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(p))
}

// TapRegisteredClient is the 8-bit client id payload of the
// registered-client flag.
type TapRegisteredClient uint8

func (p TapRegisteredClient) ConnectFlag() TapConnectFlags { return TapConnectFlagRegisteredClient }

func (p TapRegisteredClient) appendPayload(buf []byte) []byte {
	return append(buf, byte(p))
}

// tapPayloadFlags is the full set of payload-bearing flag bits, in the
// order their payloads travel on the wire.
var tapPayloadFlags = []TapConnectFlags{
	TapConnectFlagBackfill,
	TapConnectFlagRegisteredClient,
}

// AppendTapFlagPayloads appends the payloads demanded by flags onto buf.
// Every payload-bearing bit set in flags must be covered by exactly one
// payload, and no payload may be supplied for an unset bit.
func AppendTapFlagPayloads(flags TapConnectFlags, payloads []TapFlagPayload, buf []byte) ([]byte, error) {
	byFlag := make(map[TapConnectFlags]TapFlagPayload, len(payloads))
	for _, p := range payloads {
		if flags&p.ConnectFlag() == 0 {
			return nil, protocolError{"tap flag payload supplied for unset flag"}
		}
		if _, ok := byFlag[p.ConnectFlag()]; ok {
			return nil, protocolError{"duplicate tap flag payload"}
		}
		byFlag[p.ConnectFlag()] = p
	}

	for _, flag := range tapPayloadFlags {
		if flags&flag == 0 {
			continue
		}

		p, ok := byFlag[flag]
		if !ok {
			return nil, protocolError{"missing tap flag payload"}
		}
		buf = p.appendPayload(buf)
	}

	return buf, nil
}

// DecodeTapFlagPayloads decodes the payloads demanded by flags from the
// front of buf, returning them in flag bit order along with the number
// of bytes consumed.
func DecodeTapFlagPayloads(flags TapConnectFlags, buf []byte) ([]TapFlagPayload, int, error) {
	var out []TapFlagPayload
	bufPos := 0

	for _, flag := range tapPayloadFlags {
		if flags&flag == 0 {
			continue
		}

		switch flag {
		case TapConnectFlagBackfill:
			if len(buf) < bufPos+8 {
				return nil, 0, protocolError{"truncated tap backfill payload"}
			}
			out = append(out, TapBackfillSince(binary.BigEndian.Uint64(buf[bufPos:])))
			bufPos += 8
		case TapConnectFlagRegisteredClient:
			if len(buf) < bufPos+1 {
				return nil, 0, protocolError{"truncated tap registered client payload"}
			}
			out = append(out, TapRegisteredClient(buf[bufPos]))
			bufPos++
		}
	}

	return out, bufPos, nil
}

// TapExtras is the fixed extras block carried by general TAP stream
// messages (delete, flush, opaque, vbucket-set, checkpoint start/end),
// plus the engine-specific bytes that trail the fixed portion when
// the engine-specific length is non-zero.
type TapExtras struct {
	Flags          TapMessageFlags
	TTL            uint8
	EngineSpecific []byte
}

func (e TapExtras) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.EngineSpecific)))
	buf = binary.BigEndian.AppendUint16(buf, uint16(e.Flags))
	buf = append(buf, e.TTL, 0, 0, 0)
	return append(buf, e.EngineSpecific...)
}

func DecodeTapExtras(buf []byte) (TapExtras, error) {
	if len(buf) < tapExtrasLen {
		return TapExtras{}, ErrExtrasLengthMismatch
	}

	engLen := int(binary.BigEndian.Uint16(buf[0:]))
	if len(buf) != tapExtrasLen+engLen {
		return TapExtras{}, ErrExtrasLengthMismatch
	}

	out := TapExtras{
		Flags: TapMessageFlags(binary.BigEndian.Uint16(buf[2:])),
		TTL:   buf[4],
	}
	if engLen > 0 {
		out.EngineSpecific = buf[tapExtrasLen : tapExtrasLen+engLen]
	}

	return out, nil
}

// TapMutationExtras is the extras block of a TAP mutation message.  It
// extends the general form with the item flags and expiry of the
// mutated item.
type TapMutationExtras struct {
	Flags          TapMessageFlags
	TTL            uint8
	ItemFlags      uint32
	Expiry         uint32
	EngineSpecific []byte
}

func (e TapMutationExtras) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.EngineSpecific)))
	buf = binary.BigEndian.AppendUint16(buf, uint16(e.Flags))
	buf = append(buf, e.TTL, 0, 0, 0)
	buf = binary.BigEndian.AppendUint32(buf, e.ItemFlags)
	buf = binary.BigEndian.AppendUint32(buf, e.Expiry)
	return append(buf, e.EngineSpecific...)
}

func DecodeTapMutationExtras(buf []byte) (TapMutationExtras, error) {
	if len(buf) < tapMutationExtrasLen {
		return TapMutationExtras{}, ErrExtrasLengthMismatch
	}

	engLen := int(binary.BigEndian.Uint16(buf[0:]))
	if len(buf) != tapMutationExtrasLen+engLen {
		return TapMutationExtras{}, ErrExtrasLengthMismatch
	}

	out := TapMutationExtras{
		Flags:     TapMessageFlags(binary.BigEndian.Uint16(buf[2:])),
		TTL:       buf[4],
		ItemFlags: binary.BigEndian.Uint32(buf[8:]),
		Expiry:    binary.BigEndian.Uint32(buf[12:]),
	}
	if engLen > 0 {
		out.EngineSpecific = buf[tapMutationExtrasLen : tapMutationExtrasLen+engLen]
	}

	return out, nil
}
