package evaluator

import "errors"

// Sentinel kinds for evaluation errors.
var (
	// ErrPartialTaskFailure marks one failed orbit, window or partition task.
	// It is reported through Report.Failures, never returned by Evaluate.
	ErrPartialTaskFailure = errors.New("partial task failure")
	ErrNoReference        = errors.New("no reference table")
	ErrInvalidTarget      = errors.New("target coverage percent out of range")
)
