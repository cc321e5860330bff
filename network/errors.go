package network

import "errors"

var (
	// ErrInvalidArgument reports a configuration error: a zero or mismatched
	// layer size, a value count that does not fit the reserved capacity, or an
	// unset activation function type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrState reports an operation invoked before the setup it depends on,
	// e.g. connecting layers that were never sized or training before the
	// weights were initialized.
	ErrState = errors.New("invalid network state")
)
