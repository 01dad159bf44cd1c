package mcbpx

import (
	"errors"
	"fmt"
)

// ErrProtocol is the base error for all framing and encoding failures
// raised by this library.
var ErrProtocol = errors.New("protocol error")

type protocolError struct {
	message string
}

func (e protocolError) Error() string {
	return "protocol error: " + e.message
}

func (e protocolError) Unwrap() error {
	return ErrProtocol
}

var (
	// ErrMalformedHeader occurs when fewer than 24 bytes are supplied for
	// a packet header.
	ErrMalformedHeader = protocolError{"malformed header"}

	// ErrUnknownMagic occurs when the magic byte is neither the request
	// nor the response magic.
	ErrUnknownMagic = protocolError{"unknown magic"}

	// ErrKeyTooLong occurs when a key does not fit the 16-bit key length field.
	ErrKeyTooLong = protocolError{"key too long to encode"}

	// ErrBodyTooLong occurs when the combined extras, key and value do not
	// fit the 32-bit body length field.
	ErrBodyTooLong = protocolError{"body too long to encode"}

	// ErrExtrasTooLong occurs when an extras block does not fit the 8-bit
	// extras length field.
	ErrExtrasTooLong = protocolError{"extras too long to encode"}

	// ErrExtrasLengthMismatch occurs when an extras block does not have the
	// exact size registered for its opcode.
	ErrExtrasLengthMismatch = protocolError{"extras length mismatch"}

	// ErrExtrasShapeMismatch occurs when a typed extras value does not match
	// the layout registered for the opcode it is encoded for.
	ErrExtrasShapeMismatch = protocolError{"extras shape mismatch"}

	// ErrUnsupportedExtras occurs when extras are supplied for an opcode
	// with no registered extras layout.
	ErrUnsupportedExtras = protocolError{"no extras layout registered for opcode"}

	// ErrInvalidBodyLength occurs when the declared body length of a packet
	// is smaller than its declared extras and key lengths.
	ErrInvalidBodyLength = protocolError{"body length inconsistent with extras and key lengths"}
)

// Server error sentinels, one per documented status code.  These are
// surfaced wrapped in a ServerError which preserves the raw status.
var (
	ErrDocNotFound    = errors.New("document not found")
	ErrDocExists      = errors.New("document exists")
	ErrValueTooLarge  = errors.New("value too large")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrNotStored      = errors.New("document not stored")
	ErrBadDelta       = errors.New("invalid delta")
	ErrNotMyVbucket   = errors.New("not my vbucket")
	ErrAuthError      = errors.New("auth error")
	ErrAuthContinue   = errors.New("auth continue")
	ErrRangeError     = errors.New("requested range out of bounds")
	ErrUnknownCommand = errors.New("unknown command")
	ErrOutOfMemory    = errors.New("server out of memory")
	ErrNotSupported   = errors.New("operation not supported")
	ErrInternal       = errors.New("internal server error")
	ErrBusy           = errors.New("server busy")
	ErrTmpFail        = errors.New("temporary failure")

	// ErrUnknownStatus is the cause used for status codes outside the
	// documented set, preserving forward compatibility with newer servers.
	ErrUnknownStatus = errors.New("unknown status code")
)

// ServerError wraps the semantic error for a non-success response status,
// keeping the raw status code for diagnostics.
type ServerError struct {
	Cause  error
	Status Status
}

func (e ServerError) Error() string {
	return fmt.Sprintf("server error: %s (status: %s)", e.Cause, e.Status)
}

func (e ServerError) Unwrap() error {
	return e.Cause
}

// StatusToError maps a response status to its semantic error kind.  It is
// total over the 16-bit status space and returns nil for StatusSuccess.
func StatusToError(s Status) error {
	if s == StatusSuccess {
		return nil
	}

	var cause error
	switch s {
	case StatusKeyNotFound:
		cause = ErrDocNotFound
	case StatusKeyExists:
		cause = ErrDocExists
	case StatusTooBig:
		cause = ErrValueTooLarge
	case StatusInvalidArgs:
		cause = ErrInvalidArgs
	case StatusNotStored:
		cause = ErrNotStored
	case StatusBadDelta:
		cause = ErrBadDelta
	case StatusNotMyVBucket:
		cause = ErrNotMyVbucket
	case StatusAuthError:
		cause = ErrAuthError
	case StatusAuthContinue:
		cause = ErrAuthContinue
	case StatusRangeError:
		cause = ErrRangeError
	case StatusUnknownCommand:
		cause = ErrUnknownCommand
	case StatusOutOfMemory:
		cause = ErrOutOfMemory
	case StatusNotSupported:
		cause = ErrNotSupported
	case StatusInternalError:
		cause = ErrInternal
	case StatusBusy:
		cause = ErrBusy
	case StatusTmpFail:
		cause = ErrTmpFail
	default:
		cause = ErrUnknownStatus
	}

	return ServerError{
		Cause:  cause,
		Status: s,
	}
}
