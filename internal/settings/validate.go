package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/logging"
	"github.com/atlanticdynamic/coderunner/internal/logging/writers"
)

// Validate reports every problem found, joined.
func (s *Settings) Validate() error {
	var errz []error

	if _, ok := logging.ParseLevel(s.LogLevel); !ok {
		errz = append(errz, fmt.Errorf("%w: unknown log_level '%s'", ErrInvalid, s.LogLevel))
	}
	switch strings.ToLower(s.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errz = append(errz, fmt.Errorf("%w: unknown log_format '%s'", ErrInvalid, s.LogFormat))
	}

	if s.TailLines < 1 {
		errz = append(errz, fmt.Errorf("%w: tail_lines must be at least 1, got %d", ErrInvalid, s.TailLines))
	}

	for id, path := range s.Commands {
		if strings.TrimSpace(path) == "" {
			errz = append(errz, fmt.Errorf("%w: command '%s' has an empty path", ErrInvalid, id))
		}
	}
	if _, ok := s.Commands[s.Interpreter]; !ok {
		errz = append(errz, fmt.Errorf("%w: interpreter '%s' is not in commands", ErrInvalid, s.Interpreter))
	}

	for key, tag := range map[string]string{"config_tag": s.ConfigTag, "output_tag": s.OutputTag} {
		if strings.ContainsAny(tag, "<>/ \t\n") {
			errz = append(errz, fmt.Errorf("%w: %s '%s' must not contain markup or whitespace", ErrInvalid, key, tag))
		}
	}
	if s.ConfigTag == s.OutputTag {
		errz = append(errz, fmt.Errorf("%w: config_tag and output_tag are both '%s'", ErrInvalid, s.ConfigTag))
	}

	if filepath.IsAbs(s.RunDirectory) || strings.HasPrefix(filepath.Clean(s.RunDirectory), "..") {
		errz = append(errz, fmt.Errorf("%w: run_directory '%s' must stay inside the document directory", ErrInvalid, s.RunDirectory))
	}

	if _, _, err := writers.Parse(s.Transcript); err != nil {
		errz = append(errz, fmt.Errorf("%w: transcript: %w", ErrInvalid, err))
	}

	return errors.Join(errz...)
}
