package seq

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is matched (via errors.Is) by every *TruncatedInputError.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrLengthOverflow is returned when a declared count or length cannot be
	// represented as an in-memory size.
	ErrLengthOverflow = errors.New("declared length overflows")
)

// TruncatedInputError reports that a source ended before the number of bytes
// declared by a count or length field could be read.
type TruncatedInputError struct {
	// Field is one of "count", "elements", "length" or "payload".
	Field string
	// Index is the position of the string record being read, or -1 when the
	// field belongs to the sequence as a whole.
	Index int
	// Want is the number of bytes the field requires.
	Want int64
	// Got is the number of bytes that were available.
	Got int64
}

func (e *TruncatedInputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("truncated input: %s of record %d: want %d bytes, got %d", e.Field, e.Index, e.Want, e.Got)
	}
	return fmt.Sprintf("truncated input: %s: want %d bytes, got %d", e.Field, e.Want, e.Got)
}

// Is reports whether target is ErrTruncatedInput.
func (e *TruncatedInputError) Is(target error) bool { return target == ErrTruncatedInput }

// IOError wraps a failure of the underlying sink or source.
type IOError struct {
	// Op is "read" or "write".
	Op  string
	Err error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// SyntaxError is returned by DecodeText for a token that does not parse as the
// element type.
type SyntaxError struct {
	Index int
	Token string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at element %d (%q): %v", e.Index, e.Token, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsTruncated returns true if err is or wraps a *TruncatedInputError.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedInput)
}
