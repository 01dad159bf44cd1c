package mcbpx

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Extras is implemented by every typed extras block in this library.
// Append encodes the block in wire order onto buf.
type Extras interface {
	Append(buf []byte) []byte
}

const (
	setExtrasLen          = 8
	counterExtrasLen      = 20
	flushExtrasLen        = 4
	touchExtrasLen        = 4
	setParamExtrasLen     = 4
	vbucketStateExtrasLen = 4
	compactDBExtrasLen    = 24
	tapConnectExtrasLen   = 4
	tapExtrasLen          = 8
	tapMutationExtrasLen  = 16
)

// extrasInfo describes the extras layout registered for an opcode.
// Variable layouts carry engine-specific bytes after the fixed portion.
type extrasInfo struct {
	size     int
	variable bool
}

var extrasRegistry = map[OpCode]extrasInfo{
	OpCodeSet:     {size: setExtrasLen},
	OpCodeAdd:     {size: setExtrasLen},
	OpCodeReplace: {size: setExtrasLen},

	OpCodeIncrement: {size: counterExtrasLen},
	OpCodeDecrement: {size: counterExtrasLen},

	// plain delete carries an explicit zero-byte layout
	OpCodeDelete: {size: 0},

	OpCodeFlush:     {size: flushExtrasLen},
	OpCodeTouch:     {size: touchExtrasLen},
	OpCodeGAT:       {size: touchExtrasLen},
	OpCodeGetLocked: {size: touchExtrasLen},

	OpCodeSetParam:        {size: setParamExtrasLen},
	OpCodeSetVbucketState: {size: vbucketStateExtrasLen},
	OpCodeCompactDB:       {size: compactDBExtrasLen},

	OpCodeTapConnect:         {size: tapConnectExtrasLen},
	OpCodeTapMutation:        {size: tapMutationExtrasLen, variable: true},
	OpCodeTapDelete:          {size: tapExtrasLen, variable: true},
	OpCodeTapFlush:           {size: tapExtrasLen, variable: true},
	OpCodeTapOpaque:          {size: tapExtrasLen, variable: true},
	OpCodeTapVbucketSet:      {size: tapExtrasLen, variable: true},
	OpCodeTapCheckpointStart: {size: tapExtrasLen, variable: true},
	OpCodeTapCheckpointEnd:   {size: tapExtrasLen, variable: true},
}

func init() {
	// The registered sizes must agree with the encoded size of each layout.
	// A mismatch is a programming error, caught here rather than at runtime.
	encodedSizes := map[OpCode]int{
		OpCodeSet:                len(SetExtras{}.Append(nil)),
		OpCodeAdd:                len(SetExtras{}.Append(nil)),
		OpCodeReplace:            len(SetExtras{}.Append(nil)),
		OpCodeIncrement:          len(CounterExtras{}.Append(nil)),
		OpCodeDecrement:          len(CounterExtras{}.Append(nil)),
		OpCodeDelete:             0,
		OpCodeFlush:              len(FlushExtras{}.Append(nil)),
		OpCodeTouch:              len(TouchExtras{}.Append(nil)),
		OpCodeGAT:                len(TouchExtras{}.Append(nil)),
		OpCodeGetLocked:          len(TouchExtras{}.Append(nil)),
		OpCodeSetParam:           len(SetParamExtras{}.Append(nil)),
		OpCodeSetVbucketState:    len(VbucketStateExtras{}.Append(nil)),
		OpCodeCompactDB:          len(CompactDBExtras{}.Append(nil)),
		OpCodeTapConnect:         len(TapConnectExtras{}.Append(nil)),
		OpCodeTapMutation:        len(TapMutationExtras{}.Append(nil)),
		OpCodeTapDelete:          len(TapExtras{}.Append(nil)),
		OpCodeTapFlush:           len(TapExtras{}.Append(nil)),
		OpCodeTapOpaque:          len(TapExtras{}.Append(nil)),
		OpCodeTapVbucketSet:      len(TapExtras{}.Append(nil)),
		OpCodeTapCheckpointStart: len(TapExtras{}.Append(nil)),
		OpCodeTapCheckpointEnd:   len(TapExtras{}.Append(nil)),
	}

	for op, info := range extrasRegistry {
		encoded, ok := encodedSizes[op]
		if !ok {
			panic(errors.Errorf("no layout check registered for opcode %s", op))
		}
		if encoded != info.size {
			panic(errors.Errorf("extras layout size mismatch for opcode %s: registered %d, encoded %d",
				op, info.size, encoded))
		}
	}
}

// HasExtras indicates whether op has a registered request extras layout.
func HasExtras(op OpCode) bool {
	info, ok := extrasRegistry[op]
	return ok && info.size > 0
}

// ExtrasSize returns the fixed extras size registered for op.  Opcodes
// with no registered layout carry a zero-length extras block.
func ExtrasSize(op OpCode) int {
	return extrasRegistry[op].size
}

// SetExtras is the extras block for set, add and replace requests.
type SetExtras struct {
	Flags  uint32
	Expiry uint32
}

func (e SetExtras) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, e.Flags)
	buf = binary.BigEndian.AppendUint32(buf, e.Expiry)
	return buf
}

func DecodeSetExtras(buf []byte) (SetExtras, error) {
	if len(buf) != setExtrasLen {
		return SetExtras{}, ErrExtrasLengthMismatch
	}

	return SetExtras{
		Flags:  binary.BigEndian.Uint32(buf[0:]),
		Expiry: binary.BigEndian.Uint32(buf[4:]),
	}, nil
}

// counterNoCreateExpiry is the reserved expiry sentinel in counter extras
// meaning the key must not be created when it is missing.
const counterNoCreateExpiry = 0xffffffff

// CounterExtras is the extras block for increment and decrement requests.
// NoCreate indicates the do-not-create-on-miss sentinel; when it is set
// the Expiry field is ignored and the sentinel is written instead.
type CounterExtras struct {
	Delta    uint64
	Initial  uint64
	Expiry   uint32
	NoCreate bool
}

func (e CounterExtras) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint64(buf, e.Delta)
	buf = binary.BigEndian.AppendUint64(buf, e.Initial)
	if e.NoCreate {
		return binary.BigEndian.AppendUint32(buf, counterNoCreateExpiry)
	}
	return binary.BigEndian.AppendUint32(buf, e.Expiry)
}

func DecodeCounterExtras(buf []byte) (CounterExtras, error) {
	if len(buf) != counterExtrasLen {
		return CounterExtras{}, ErrExtrasLengthMismatch
	}

	out := CounterExtras{
		Delta:   binary.BigEndian.Uint64(buf[0:]),
		Initial: binary.BigEndian.Uint64(buf[8:]),
	}

	expiry := binary.BigEndian.Uint32(buf[16:])
	if expiry == counterNoCreateExpiry {
		out.NoCreate = true
	} else {
		out.Expiry = expiry
	}

	return out, nil
}

// FlushExtras is the extras block for flush requests.  When carries the
// delay before the flush takes effect.
type FlushExtras struct {
	When uint32
}

func (e FlushExtras) Append(buf []byte) []byte {
	return binary.BigEndian.AppendUint32(buf, e.When)
}

func DecodeFlushExtras(buf []byte) (FlushExtras, error) {
	if len(buf) != flushExtrasLen {
		return FlushExtras{}, ErrExtrasLengthMismatch
	}

	return FlushExtras{When: binary.BigEndian.Uint32(buf)}, nil
}

// TouchExtras is the extras block for touch, get-and-touch and get-locked
// requests.  For get-locked the field carries the lock time.
type TouchExtras struct {
	Expiry uint32
}

func (e TouchExtras) Append(buf []byte) []byte {
	return binary.BigEndian.AppendUint32(buf, e.Expiry)
}

func DecodeTouchExtras(buf []byte) (TouchExtras, error) {
	if len(buf) != touchExtrasLen {
		return TouchExtras{}, ErrExtrasLengthMismatch
	}

	return TouchExtras{Expiry: binary.BigEndian.Uint32(buf)}, nil
}

// EngineParam identifies the parameter class targeted by a set-param request.
type EngineParam uint32

const (
	EngineParamFlush      = EngineParam(0x01)
	EngineParamTap        = EngineParam(0x02)
	EngineParamCheckpoint = EngineParam(0x03)
	EngineParamDcp        = EngineParam(0x04)
	EngineParamVbucket    = EngineParam(0x05)
)

// SetParamExtras is the extras block for engine set-param requests.  The
// parameter name travels as the key and the new value as the value.
type SetParamExtras struct {
	Param EngineParam
}

func (e SetParamExtras) Append(buf []byte) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(e.Param))
}

func DecodeSetParamExtras(buf []byte) (SetParamExtras, error) {
	if len(buf) != setParamExtrasLen {
		return SetParamExtras{}, ErrExtrasLengthMismatch
	}

	return SetParamExtras{Param: EngineParam(binary.BigEndian.Uint32(buf))}, nil
}

// VbucketStateExtras is the extras block for vbucket state-set requests.
type VbucketStateExtras struct {
	State VbucketState
}

func (e VbucketStateExtras) Append(buf []byte) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(e.State))
}

func DecodeVbucketStateExtras(buf []byte) (VbucketStateExtras, error) {
	if len(buf) != vbucketStateExtrasLen {
		return VbucketStateExtras{}, ErrExtrasLengthMismatch
	}

	return VbucketStateExtras{State: VbucketState(binary.BigEndian.Uint32(buf))}, nil
}

// CompactDBExtras is the extras block for database compaction requests.
type CompactDBExtras struct {
	PurgeBeforeTs  uint64
	PurgeBeforeSeq uint64
	DropDeletes    bool
}

func (e CompactDBExtras) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint64(buf, e.PurgeBeforeTs)
	buf = binary.BigEndian.AppendUint64(buf, e.PurgeBeforeSeq)
	if e.DropDeletes {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	// 7 reserved bytes
	return append(buf, 0, 0, 0, 0, 0, 0, 0)
}

func DecodeCompactDBExtras(buf []byte) (CompactDBExtras, error) {
	if len(buf) != compactDBExtrasLen {
		return CompactDBExtras{}, ErrExtrasLengthMismatch
	}

	return CompactDBExtras{
		PurgeBeforeTs:  binary.BigEndian.Uint64(buf[0:]),
		PurgeBeforeSeq: binary.BigEndian.Uint64(buf[8:]),
		DropDeletes:    buf[16] != 0,
	}, nil
}

// EncodeExtras encodes a typed extras value for op, enforcing that op has
// a registered layout and that the value matches it.
func EncodeExtras(op OpCode, extras Extras) ([]byte, error) {
	info, ok := extrasRegistry[op]
	if !ok || info.size == 0 {
		return nil, ErrUnsupportedExtras
	}

	if !extrasShapeMatches(op, extras) {
		return nil, ErrExtrasShapeMismatch
	}

	return extras.Append(nil), nil
}

func extrasShapeMatches(op OpCode, extras Extras) bool {
	switch op {
	case OpCodeSet, OpCodeAdd, OpCodeReplace:
		_, ok := extras.(SetExtras)
		return ok
	case OpCodeIncrement, OpCodeDecrement:
		_, ok := extras.(CounterExtras)
		return ok
	case OpCodeFlush:
		_, ok := extras.(FlushExtras)
		return ok
	case OpCodeTouch, OpCodeGAT, OpCodeGetLocked:
		_, ok := extras.(TouchExtras)
		return ok
	case OpCodeSetParam:
		_, ok := extras.(SetParamExtras)
		return ok
	case OpCodeSetVbucketState:
		_, ok := extras.(VbucketStateExtras)
		return ok
	case OpCodeCompactDB:
		_, ok := extras.(CompactDBExtras)
		return ok
	case OpCodeTapConnect:
		_, ok := extras.(TapConnectExtras)
		return ok
	case OpCodeTapMutation:
		_, ok := extras.(TapMutationExtras)
		return ok
	case OpCodeTapDelete, OpCodeTapFlush, OpCodeTapOpaque, OpCodeTapVbucketSet,
		OpCodeTapCheckpointStart, OpCodeTapCheckpointEnd:
		_, ok := extras.(TapExtras)
		return ok
	}
	return false
}

// DecodeExtras decodes the extras block of a request packet into its
// typed representation for op.  Opcodes with no registered layout accept
// only a zero-length block and decode to nil.
func DecodeExtras(op OpCode, buf []byte) (Extras, error) {
	var out Extras
	var err error

	switch op {
	case OpCodeSet, OpCodeAdd, OpCodeReplace:
		out, err = DecodeSetExtras(buf)
	case OpCodeIncrement, OpCodeDecrement:
		out, err = DecodeCounterExtras(buf)
	case OpCodeFlush:
		out, err = DecodeFlushExtras(buf)
	case OpCodeTouch, OpCodeGAT, OpCodeGetLocked:
		out, err = DecodeTouchExtras(buf)
	case OpCodeSetParam:
		out, err = DecodeSetParamExtras(buf)
	case OpCodeSetVbucketState:
		out, err = DecodeVbucketStateExtras(buf)
	case OpCodeCompactDB:
		out, err = DecodeCompactDBExtras(buf)
	case OpCodeTapConnect:
		out, err = DecodeTapConnectExtras(buf)
	case OpCodeTapMutation:
		out, err = DecodeTapMutationExtras(buf)
	case OpCodeTapDelete, OpCodeTapFlush, OpCodeTapOpaque, OpCodeTapVbucketSet,
		OpCodeTapCheckpointStart, OpCodeTapCheckpointEnd:
		out, err = DecodeTapExtras(buf)
	default:
		if len(buf) != 0 {
			return nil, ErrExtrasLengthMismatch
		}
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}
