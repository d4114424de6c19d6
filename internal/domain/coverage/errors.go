package coverage

import "errors"

// Sentinel kinds for matching errors.
var (
	ErrInvalidPartition = errors.New("invalid tile partition")
)
