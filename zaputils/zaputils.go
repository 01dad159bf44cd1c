package zaputils

import (
	"fmt"

	"go.uber.org/zap"
)

func BucketName(key string, val string) zap.Field {
	return zap.String(key, val)
}

func DocID(key string, val []byte) zap.Field {
	return zap.String(key, string(val))
}

func VbucketID(key string, val uint16) zap.Field {
	return zap.Uint16(key, val)
}

type namedCode struct {
	name string
	code uint64
}

func (e namedCode) String() string {
	return fmt.Sprintf("%s (0x%02x)", e.name, e.code)
}

func OpCode(key string, val fmt.Stringer, code uint8) zap.Field {
	return zap.Stringer(key, namedCode{name: val.String(), code: uint64(code)})
}

func Status(key string, val fmt.Stringer, code uint16) zap.Field {
	return zap.Stringer(key, namedCode{name: val.String(), code: uint64(code)})
}

type loggablePacketID struct {
	OpCodeName string
	Opaque     uint32
}

func (e loggablePacketID) String() string {
	return fmt.Sprintf("%s/%08x", e.OpCodeName, e.Opaque)
}

func PacketID(key string, opCodeName string, opaque uint32) zap.Field {
	return zap.Stringer(key, loggablePacketID{
		OpCodeName: opCodeName,
		Opaque:     opaque,
	})
}
