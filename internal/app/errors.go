package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoReferenceLoader = errors.New("no reference loader configured")
	ErrNotStarted        = errors.New("service not started")
	ErrTooManyProductIDs = errors.New("too many product ids")
)
