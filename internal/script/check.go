package script

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Check parses source as a POSIX shell program without running it.
func Check(name, source string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(source), name); err != nil {
		return fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return nil
}
