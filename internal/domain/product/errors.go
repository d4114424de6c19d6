package product

import "errors"

// Sentinel kinds for identifier parsing.
var (
	// ErrMalformedBurstIdentifier marks a record that must be skipped.
	ErrMalformedBurstIdentifier = errors.New("malformed burst identifier")
)
