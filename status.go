package mcbpx

import "encoding/hex"

// Status represents the status code field of a response packet.
type Status uint16

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess = Status(0x00)

	// StatusKeyNotFound occurs when an operation is performed on a key that does not exist.
	StatusKeyNotFound = Status(0x01)

	// StatusKeyExists occurs when an operation conflicts with an existing key,
	// or a CAS mismatch is detected.
	StatusKeyExists = Status(0x02)

	// StatusTooBig occurs when an operation attempts to store more data in a single
	// item than the server is willing to accept.
	StatusTooBig = Status(0x03)

	// StatusInvalidArgs occurs when the server receives invalid arguments for an operation.
	StatusInvalidArgs = Status(0x04)

	// StatusNotStored occurs when the server fails to store a key.
	StatusNotStored = Status(0x05)

	// StatusBadDelta occurs when an invalid delta value is specified to a counter operation.
	StatusBadDelta = Status(0x06)

	// StatusNotMyVBucket occurs when an operation is dispatched to a server which is
	// non-authoritative for a specific vbucket.
	StatusNotMyVBucket = Status(0x07)

	// StatusAuthError occurs when the authentication information provided was not valid.
	StatusAuthError = Status(0x20)

	// StatusAuthContinue occurs in multi-step authentication when more authentication
	// work needs to be performed in order to complete the authentication process.
	StatusAuthContinue = Status(0x21)

	// StatusRangeError occurs when the range specified to the server is not valid.
	StatusRangeError = Status(0x22)

	// StatusUnknownCommand occurs when an unknown operation is sent to a server.
	StatusUnknownCommand = Status(0x81)

	// StatusOutOfMemory occurs when the server cannot service a request due to memory
	// limitations.
	StatusOutOfMemory = Status(0x82)

	// StatusNotSupported occurs when an operation is understood by the server, but that
	// operation is not supported on this server.
	StatusNotSupported = Status(0x83)

	// StatusInternalError occurs when internal errors prevent the server from processing
	// your request.
	StatusInternalError = Status(0x84)

	// StatusBusy occurs when the server is too busy to process your request right away.
	// Attempting the operation at a later time will likely succeed.
	StatusBusy = Status(0x85)

	// StatusTmpFail occurs when a temporary failure is preventing the server from
	// processing your request.
	StatusTmpFail = Status(0x86)
)

// String returns the textual representation of this Status.  Codes which
// are not known to this library render as their hex value.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusKeyNotFound:
		return "KeyNotFound"
	case StatusKeyExists:
		return "KeyExists"
	case StatusTooBig:
		return "TooBig"
	case StatusInvalidArgs:
		return "InvalidArgs"
	case StatusNotStored:
		return "NotStored"
	case StatusBadDelta:
		return "BadDelta"
	case StatusNotMyVBucket:
		return "NotMyVBucket"
	case StatusAuthError:
		return "AuthError"
	case StatusAuthContinue:
		return "AuthContinue"
	case StatusRangeError:
		return "RangeError"
	case StatusUnknownCommand:
		return "UnknownCommand"
	case StatusOutOfMemory:
		return "OutOfMemory"
	case StatusNotSupported:
		return "NotSupported"
	case StatusInternalError:
		return "InternalError"
	case StatusBusy:
		return "Busy"
	case StatusTmpFail:
		return "TmpFail"
	}

	return "x" + hex.EncodeToString([]byte{byte(s >> 8), byte(s)})
}
