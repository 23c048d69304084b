// Package config holds the option table of the mode decision engine and the
// typed configuration built from it.
package config

import "errors"

// Sentinel errors for option parsing and validation.
var (
	// ErrUnknownOption indicates an option ID that is not in the table.
	ErrUnknownOption = errors.New("unknown option")

	// ErrOutOfRange indicates an integer option outside its declared range.
	ErrOutOfRange = errors.New("option value out of range")

	// ErrInvalidChoice indicates a value that is not one of an option's choices.
	ErrInvalidChoice = errors.New("invalid option choice")

	// ErrInvalidGeometry indicates block size limits that cannot be combined.
	ErrInvalidGeometry = errors.New("invalid block geometry")
)
