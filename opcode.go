package mcbpx

import "encoding/hex"

// OpCode represents the specific command the packet is performing.  The
// same code space is shared by request and response packets.
type OpCode uint8

// These constants provide predefined values for all the operations
// which are supported by this library.
const (
	OpCodeGet       = OpCode(0x00)
	OpCodeSet       = OpCode(0x01)
	OpCodeAdd       = OpCode(0x02)
	OpCodeReplace   = OpCode(0x03)
	OpCodeDelete    = OpCode(0x04)
	OpCodeIncrement = OpCode(0x05)
	OpCodeDecrement = OpCode(0x06)
	OpCodeQuit      = OpCode(0x07)
	OpCodeFlush     = OpCode(0x08)
	OpCodeGetQ      = OpCode(0x09)
	OpCodeNoop      = OpCode(0x0a)
	OpCodeVersion   = OpCode(0x0b)
	OpCodeAppend    = OpCode(0x0e)
	OpCodePrepend   = OpCode(0x0f)
	OpCodeStat      = OpCode(0x10)
	OpCodeSetQ      = OpCode(0x11)
	OpCodeDeleteQ   = OpCode(0x14)
	OpCodeVerbose   = OpCode(0x1b)
	OpCodeTouch     = OpCode(0x1c)
	OpCodeGAT       = OpCode(0x1d)

	OpCodeSASLListMechs = OpCode(0x20)
	OpCodeSASLAuth      = OpCode(0x21)
	OpCodeSASLStep      = OpCode(0x22)

	OpCodeSetVbucketState = OpCode(0x3d)
	OpCodeGetVbucketState = OpCode(0x3e)
	OpCodeDeleteVbucket   = OpCode(0x3f)

	OpCodeTapConnect         = OpCode(0x40)
	OpCodeTapMutation        = OpCode(0x41)
	OpCodeTapDelete          = OpCode(0x42)
	OpCodeTapFlush           = OpCode(0x43)
	OpCodeTapOpaque          = OpCode(0x44)
	OpCodeTapVbucketSet      = OpCode(0x45)
	OpCodeTapCheckpointStart = OpCode(0x46)
	OpCodeTapCheckpointEnd   = OpCode(0x47)

	OpCodeStopPersistence  = OpCode(0x80)
	OpCodeStartPersistence = OpCode(0x81)
	OpCodeSetParam         = OpCode(0x82)
	OpCodeGetReplica       = OpCode(0x83)

	OpCodeCreateBucket = OpCode(0x85)
	OpCodeDeleteBucket = OpCode(0x86)
	OpCodeListBuckets  = OpCode(0x87)
	OpCodeExpandBucket = OpCode(0x88)
	OpCodeSelectBucket = OpCode(0x89)

	OpCodeObserve   = OpCode(0x92)
	OpCodeEvictKey  = OpCode(0x93)
	OpCodeGetLocked = OpCode(0x94)

	OpCodeDeregisterTapClient   = OpCode(0x9e)
	OpCodeResetReplicationChain = OpCode(0x9f)

	OpCodeGetMeta      = OpCode(0xa0)
	OpCodeGetQMeta     = OpCode(0xa1)
	OpCodeSetWithMeta  = OpCode(0xa2)
	OpCodeSetQWithMeta = OpCode(0xa3)
	OpCodeAddWithMeta  = OpCode(0xa4)
	OpCodeAddQWithMeta = OpCode(0xa5)
	OpCodeDelWithMeta  = OpCode(0xa8)
	OpCodeDelQWithMeta = OpCode(0xa9)

	OpCodeCompactDB = OpCode(0xb3)
)

// String returns the string representation of the OpCode.  Codes which
// are not known to this library render as their hex value, since peers
// must tolerate opcodes they do not understand.
func (command OpCode) String() string {
	switch command {
	case OpCodeGet:
		return "GET"
	case OpCodeSet:
		return "SET"
	case OpCodeAdd:
		return "ADD"
	case OpCodeReplace:
		return "REPLACE"
	case OpCodeDelete:
		return "DELETE"
	case OpCodeIncrement:
		return "INCREMENT"
	case OpCodeDecrement:
		return "DECREMENT"
	case OpCodeQuit:
		return "QUIT"
	case OpCodeFlush:
		return "FLUSH"
	case OpCodeGetQ:
		return "GETQ"
	case OpCodeNoop:
		return "NOOP"
	case OpCodeVersion:
		return "VERSION"
	case OpCodeAppend:
		return "APPEND"
	case OpCodePrepend:
		return "PREPEND"
	case OpCodeStat:
		return "STAT"
	case OpCodeSetQ:
		return "SETQ"
	case OpCodeDeleteQ:
		return "DELETEQ"
	case OpCodeVerbose:
		return "VERBOSE"
	case OpCodeTouch:
		return "TOUCH"
	case OpCodeGAT:
		return "GAT"
	case OpCodeSASLListMechs:
		return "SASLLISTMECHS"
	case OpCodeSASLAuth:
		return "SASLAUTH"
	case OpCodeSASLStep:
		return "SASLSTEP"
	case OpCodeSetVbucketState:
		return "SETVBUCKETSTATE"
	case OpCodeGetVbucketState:
		return "GETVBUCKETSTATE"
	case OpCodeDeleteVbucket:
		return "DELETEVBUCKET"
	case OpCodeTapConnect:
		return "TAPCONNECT"
	case OpCodeTapMutation:
		return "TAPMUTATION"
	case OpCodeTapDelete:
		return "TAPDELETE"
	case OpCodeTapFlush:
		return "TAPFLUSH"
	case OpCodeTapOpaque:
		return "TAPOPAQUE"
	case OpCodeTapVbucketSet:
		return "TAPVBUCKETSET"
	case OpCodeTapCheckpointStart:
		return "TAPCHECKPOINTSTART"
	case OpCodeTapCheckpointEnd:
		return "TAPCHECKPOINTEND"
	case OpCodeStopPersistence:
		return "STOPPERSISTENCE"
	case OpCodeStartPersistence:
		return "STARTPERSISTENCE"
	case OpCodeSetParam:
		return "SETPARAM"
	case OpCodeGetReplica:
		return "GETREPLICA"
	case OpCodeCreateBucket:
		return "CREATEBUCKET"
	case OpCodeDeleteBucket:
		return "DELETEBUCKET"
	case OpCodeListBuckets:
		return "LISTBUCKETS"
	case OpCodeExpandBucket:
		return "EXPANDBUCKET"
	case OpCodeSelectBucket:
		return "SELECTBUCKET"
	case OpCodeObserve:
		return "OBSERVE"
	case OpCodeEvictKey:
		return "EVICTKEY"
	case OpCodeGetLocked:
		return "GET_LOCKED"
	case OpCodeDeregisterTapClient:
		return "DEREGISTERTAPCLIENT"
	case OpCodeResetReplicationChain:
		return "RESETREPLICATIONCHAIN"
	case OpCodeGetMeta:
		return "GET_META"
	case OpCodeGetQMeta:
		return "GETQ_META"
	case OpCodeSetWithMeta:
		return "SET_META"
	case OpCodeSetQWithMeta:
		return "SETQ_META"
	case OpCodeAddWithMeta:
		return "ADD_META"
	case OpCodeAddQWithMeta:
		return "ADDQ_META"
	case OpCodeDelWithMeta:
		return "DEL_META"
	case OpCodeDelQWithMeta:
		return "DELQ_META"
	case OpCodeCompactDB:
		return "COMPACTDB"
	default:
		return "x" + hex.EncodeToString([]byte{byte(command)})
	}
}
