package refdb

import "github.com/okian/burstcov/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}
