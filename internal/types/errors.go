package types

import (
	"errors"
	"fmt"
)

// ErrDecode is returned (wrapped) when the input is not a readable spreadsheet.
var ErrDecode = errors.New("input is not a valid spreadsheet")

// DecodeError reports a spreadsheet that could not be decoded.
type DecodeError struct {
	// Source is the file name or description of the input.
	Source string

	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

// Unwrap exposes both ErrDecode and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// NewDecodeError wraps err as a DecodeError for source.
func NewDecodeError(source string, err error) *DecodeError {
	return &DecodeError{Source: source, Err: err}
}

// SchemaError reports a record that lacks a required column.
type SchemaError struct {
	Row    int
	Column string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("row %d: missing required column %q", e.Row, e.Column)
}

// ArithmeticError reports a monetary field that is not numeric.
type ArithmeticError struct {
	Row    int
	Column string
	Value  string
}

// Error implements the error interface.
func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("row %d: column %q is not numeric (value: %q)", e.Row, e.Column, e.Value)
}
