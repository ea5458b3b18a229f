package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/runner"
	"github.com/atlanticdynamic/coderunner/internal/settings"
)

// Option configures a Session.
type Option func(*Session)

// WithSettings replaces the default settings. A nil value is ignored.
func WithSettings(s *settings.Settings) Option {
	return func(sess *Session) {
		if s != nil {
			sess.settings = s
		}
	}
}

// WithLogHandler sets the handler used by the session and every component it creates.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *Session) {
		if handler != nil {
			s.handler = handler
		}
	}
}

// WithPrompter sets how missing parameter values are asked for.
func WithPrompter(p resolver.Prompter) Option {
	return func(s *Session) {
		if p != nil {
			s.prompter = p
		}
	}
}

// WithMemory shares previously entered values between sessions.
func WithMemory(m *resolver.Memory) Option {
	return func(s *Session) {
		if m != nil {
			s.memory = m
		}
	}
}

// WithRunner overrides the runner built from the settings.
func WithRunner(r *runner.Runner) Option {
	return func(s *Session) {
		s.runner = r
	}
}

// WithTranscript sets where complete run output is appended.
func WithTranscript(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.transcriptOut = w
		}
	}
}

// WithLiveOutput receives each output line while the script runs.
func WithLiveOutput(w io.Writer) Option {
	return func(s *Session) {
		s.live = w
	}
}

// WithClock replaces time.Now for the timestamp argument.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDryRun resolves and renders a plan without writing or running anything.
func WithDryRun(enabled bool) Option {
	return func(s *Session) {
		s.dryRun = enabled
	}
}

// WithNoWrite runs the script but leaves the document untouched.
func WithNoWrite(enabled bool) Option {
	return func(s *Session) {
		s.noWrite = enabled
	}
}
