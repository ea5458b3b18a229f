package mcpserver

import (
	"io"
	"log/slog"

	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Option configures a Server.
type Option func(*Server)

// WithSettings sets the settings every run uses.
func WithSettings(s *settings.Settings) Option {
	return func(srv *Server) {
		if s != nil {
			srv.settings = s
		}
	}
}

// WithLogHandler sets a custom log handler for the Server and the sessions it creates.
func WithLogHandler(handler slog.Handler) Option {
	return func(srv *Server) {
		if handler != nil {
			srv.handler = handler
		}
	}
}

// WithTranscript appends the output of every run to w. It must not be the stream the
// MCP transport writes to.
func WithTranscript(w io.Writer) Option {
	return func(srv *Server) {
		if w != nil {
			srv.transcript = w
		}
	}
}

// WithMemory shares remembered values with another session.
func WithMemory(m *resolver.Memory) Option {
	return func(srv *Server) {
		if m != nil {
			srv.memory = m
		}
	}
}

// WithTransport replaces the stdio transport Run serves on.
func WithTransport(t mcp.Transport) Option {
	return func(srv *Server) {
		if t != nil {
			srv.transport = t
		}
	}
}

// WithOnExit registers fn to be called when Run returns, so a supervisor hosting the
// Server can shut down once the client disconnects.
func WithOnExit(fn func()) Option {
	return func(srv *Server) {
		srv.onExit = fn
	}
}
