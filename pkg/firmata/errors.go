package firmata

import (
	"errors"
	"fmt"
)

var (
	// ErrSysexOverflow indicates a Sysex payload exceeds the buffer capacity.
	ErrSysexOverflow = errors.New("sysex payload overflow")
	// ErrUnexpectedCommandByte indicates a byte with high bit set arrived
	// while argument bytes were expected.
	ErrUnexpectedCommandByte = errors.New("unexpected command byte")
	// ErrOddPayload indicates a 14-bit pair encoded payload has odd length.
	ErrOddPayload = errors.New("odd length 14-bit payload")
	// ErrInvalidSysexByte indicates a Sysex payload byte is not 7-bit.
	ErrInvalidSysexByte = errors.New("sysex payload byte exceeds 7 bits")
	// ErrValueOutOfRange indicates a value doesn't fit in its wire encoding.
	ErrValueOutOfRange = errors.New("value out of range")
)

// ParseError reports malformed input. The command in progress is
// discarded and the parser is back in command-byte mode.
type ParseError struct {
	// Command is the command being parsed when the error happened.
	Command Command
	// Sysex is the sub-command if Command is StartSysex and the
	// sub-command byte has been received.
	Sysex SysexCommand
	Err   error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Command == StartSysex {
		return fmt.Sprintf("parse %s %s: %v", e.Command, e.Sysex, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsMalformed returns true if err is reported by Parser for malformed input.
func IsMalformed(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
