package resolver

import "log/slog"

// Option is a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used by the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLogHandler builds the resolver logger from a handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Resolver) {
		if handler != nil {
			r.logger = slog.New(handler)
		}
	}
}
