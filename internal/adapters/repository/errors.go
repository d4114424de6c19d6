package repository

import "errors"

// Sentinel kinds for burst store errors.
var (
	ErrEmptyProductID = errors.New("empty product id")
)
