package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/coderunner/internal/logging"
	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/urfave/cli/v3"
)

// loadSettings reads the settings named by --settings, validates them and installs the
// default logger on stderr.
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	level := cmd.String("log-level")
	if level == "" {
		level = s.LogLevel
	}
	if _, ok := logging.ParseLevel(level); !ok {
		return nil, fmt.Errorf("unknown log level '%s'", level)
	}
	level = logging.ResolveLevel(level, s.Verbose)

	slog.SetDefault(slog.New(logging.NewHandler(s.LogFormat, level, os.Stderr)))
	if s.Source != "" {
		slog.Debug("Loaded settings", "path", s.Source)
	}
	return s, nil
}
