package evaluator

import (
	"github.com/okian/burstcov/internal/domain/coverage"
	"github.com/okian/burstcov/pkg/logger"
)

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithOrbitWorkers bounds the coarse, per-orbit pool.
func WithOrbitWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.orbitWorkers = n
		}
	}
}

// WithWindowWorkers bounds the fine pool each orbit task fans out on.
func WithWindowWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.windowWorkers = n
		}
	}
}

// WithPartitionsPerTask sets how many partitions one fine task matches
// against a window.
func WithPartitionsPerTask(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.partitionsPerTask = n
		}
	}
}

// WithMatcher replaces the set matcher. A custom matcher owns its own tier
// threshold; the target passed to Evaluate is then only validated.
func WithMatcher(m coverage.Matcher) Option {
	return func(e *Evaluator) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}
