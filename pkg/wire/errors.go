package wire

import (
	"errors"
	"fmt"
)

// Decode and encode failures. Every error returned by this package wraps
// exactly one of these, so callers classify with errors.Is.
var (
	ErrUnexpectedEOF          = errors.New("wire: unexpected end of input")
	ErrNonCanonicalEncoding   = errors.New("wire: non-canonical encoding")
	ErrLengthExceedsLimit     = errors.New("wire: declared length exceeds limit")
	ErrLengthExceedsRemaining = &truncationError{msg: "wire: declared length exceeds remaining input"}
	ErrMalformedWitnessMarker = errors.New("wire: malformed witness marker")
	ErrWrongNetwork           = errors.New("wire: message from wrong network")
	ErrChecksumMismatch       = errors.New("wire: payload checksum mismatch")
	ErrCapacityExceeded       = errors.New("wire: sink capacity exceeded")
	ErrMessageTooLarge        = errors.New("wire: message payload too large")
	ErrCommandTooLong         = errors.New("wire: command name too long")
	ErrInvalidCommand         = errors.New("wire: invalid command name")
	ErrUnknownCommand         = errors.New("wire: unknown command")
	ErrInvalidLimits          = errors.New("wire: invalid limits")
	ErrTrailingData           = errors.New("wire: trailing data after object")
)

// truncationError is a declared-length overrun. It is its own variant but
// also matches ErrUnexpectedEOF, since the input ended before the data it
// promised.
type truncationError struct {
	msg string
}

func (e *truncationError) Error() string { return e.msg }

func (e *truncationError) Unwrap() error { return ErrUnexpectedEOF }

// MessageError describes a failure at the message envelope level.
//
// Func names the operation that rejected the message, Command is the
// command name when it was already known, and Err is the sentinel cause.
type MessageError struct {
	Func        string // Function name (e.g. "ReadEnvelope")
	Command     string // Command name, empty if not yet decoded
	Description string // Human-readable detail
	Err         error  // Underlying sentinel
}

func (e *MessageError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Func, e.Command, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Func, e.Description, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

// messageError is a convenience constructor for *MessageError.
func messageError(f, command string, err error, format string, args ...any) *MessageError {
	return &MessageError{
		Func:        f,
		Command:     command,
		Description: fmt.Sprintf(format, args...),
		Err:         err,
	}
}
