// Package logging builds the slog handlers used across the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	// LevelTrace is debug output with caller information.
	LevelTrace = "trace"
)

// ParseLevel maps a level name to an slog level. The empty string means info.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, true
	case LevelTrace, "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// ResolveLevel combines an explicit level with the verbose setting: verbose raises an
// unset level to debug, an explicit level always wins.
func ResolveLevel(level string, verbose bool) string {
	if level == "" && verbose {
		return "debug"
	}
	return level
}

// NewHandler returns a JSON handler for FormatJSON and a text handler otherwise.
func NewHandler(format, level string, writer io.Writer) slog.Handler {
	if strings.EqualFold(format, FormatJSON) {
		return SetupHandlerJSON(level, writer)
	}
	return SetupHandlerText(level, writer)
}

// SetupHandlerText configures a charmbracelet text handler with the provided writer and level.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	level, _ := ParseLevel(logLevel)
	trace := strings.EqualFold(logLevel, LevelTrace)

	lvl := log.InfoLevel
	switch level {
	case slog.LevelDebug:
		lvl = log.DebugLevel
	case slog.LevelWarn:
		lvl = log.WarnLevel
	case slog.LevelError:
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: level == slog.LevelDebug,
		ReportCaller:    trace,
		Level:           lvl,
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and level.
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	level, _ := ParseLevel(logLevel)
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(logLevel, LevelTrace),
	})
}

