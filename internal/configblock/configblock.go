// Package configblock reads `key = value` defaults from a marked region of a document.
//
//	<!--CodeRunnerCONFIG-->
//	host = example.com
//	url = https://${host}/api
//	<!--/CodeRunnerCONFIG-->
//
// Values may reference keys defined on earlier lines of the same block.
package configblock

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// DefaultTag names the config markers when settings do not override it.
const DefaultTag = "CodeRunnerCONFIG"

// Extract finds the first config block for tag in doc and parses it. A document without
// the markers yields an empty result and no error.
func Extract(doc document.Document, tag string, logger *slog.Logger) (*placeholder.Values, error) {
	if logger == nil {
		logger = slog.Default()
	}

	region, ok := document.FindMarkedRegion(doc, tag, 0)
	if !ok {
		logger.Debug("No config block found", "tag", tag)
		return &placeholder.Values{}, nil
	}

	var lines []string
	for _, l := range doc.SplitLines(region) {
		lines = append(lines, doc.Substr(l))
	}
	logger.Debug("Found config block", "tag", tag, "lines", len(lines))

	return Parse(lines, logger)
}

// Parse interprets lines as `name = value` assignments. The name is the last
// whitespace-separated token left of the first `=`, so a leading comment marker is tolerated.
// Lines without `=` are ignored.
func Parse(lines []string, logger *slog.Logger) (*placeholder.Values, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config := &placeholder.Values{}
	for i, text := range lines {
		left, right, found := strings.Cut(text, "=")
		if !found {
			continue
		}

		fields := strings.Fields(left)
		if len(fields) == 0 {
			logger.Debug("Skipping config line without a name", "line", i+1)
			continue
		}
		name := fields[len(fields)-1]

		value, err := placeholder.Substitute(strings.TrimSpace(right), config.Lookup())
		if err != nil {
			switch {
			case errors.Is(err, placeholder.ErrUndefinedReference):
				return nil, fmt.Errorf("%w: key '%s' on line %d: %w", ErrUndefinedConfigReference, name, i+1, err)
			default:
				return nil, fmt.Errorf("%w: key '%s' on line %d: %w", ErrInvalidConfigValue, name, i+1, err)
			}
		}

		logger.Debug("Extracted config", "name", name, "value", value)
		config.Set(name, value)
	}

	return config, nil
}
