package felt

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrInvalidAddress    = errors.New("felt: invalid address")
	ErrInvalidFelt       = errors.New("felt: invalid field element")
	ErrOutOfRange        = errors.New("felt: value out of range")
	ErrUnrecognizedShape = errors.New("felt: unrecognized response shape")
)

// AddressError describes why an input could not be normalized to an address.
type AddressError struct {
	Input  string
	Reason string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("felt: invalid address %q: %s", e.Input, e.Reason)
}

func (e *AddressError) Unwrap() error { return ErrInvalidAddress }

// RangeError reports a number outside the domain of a Bits-wide unsigned word.
type RangeError struct {
	Value *big.Int
	Bits  int
}

func (e *RangeError) Error() string {
	v := "<nil>"
	if e.Value != nil {
		v = e.Value.String()
	}
	return fmt.Sprintf("felt: %s is outside the unsigned %d-bit range", v, e.Bits)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// UnrecognizedShapeError is returned when a contract call result matches none
// of the shapes a decoder knows about.
type UnrecognizedShapeError struct {
	Want  string
	Words int
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("felt: cannot decode %d-word result as %s", e.Words, e.Want)
}

func (e *UnrecognizedShapeError) Unwrap() error { return ErrUnrecognizedShape }
