package runner

import (
	"io"
	"log/slog"
	"maps"
	"slices"
)

type Option func(*Runner)

// WithLogger sets a custom logger for the Runner instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLogHandler sets a custom log handler for the Runner instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Runner) {
		if handler != nil {
			r.logger = slog.New(handler)
		}
	}
}

// WithCommands replaces the interpreter id to executable mapping. A value of Builtin runs
// scripts in-process.
func WithCommands(commands map[string]string) Option {
	return func(r *Runner) {
		if len(commands) > 0 {
			r.commands = maps.Clone(commands)
		}
	}
}

// WithInterpreter selects which entry of the command mapping runs scripts.
func WithInterpreter(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.interpreter = id
		}
	}
}

// WithTailLines sets the number of trailing output lines kept for the inline summary.
func WithTailLines(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.tailLines = n
		}
	}
}

// WithEnv replaces the environment passed to scripts.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = slices.Clone(env)
	}
}

// WithOutput streams every output line to w as it arrives.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.live = w
	}
}
