package refdb

import "errors"

// Sentinel kinds for reference database errors.
var (
	// ErrReferenceDataUnavailable is fatal for an evaluation run.
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")
	ErrMalformedRow             = errors.New("malformed reference row")
)
