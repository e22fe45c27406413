package repository

import "github.com/wingmate/wingmate/pkg/logger"

type options struct {
	logger   logger.Logger
	maxConns int32
}

// Option applies a configuration option to the Postgres store.
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{logger: logger.Get().Named("repository")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}
