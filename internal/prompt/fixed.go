package prompt

import (
	"context"
	"fmt"
	"maps"

	"github.com/atlanticdynamic/coderunner/internal/resolver"
)

var _ resolver.Prompter = (*Fixed)(nil)

// Fixed answers from a map given up front, for runs without a terminal. A name missing from
// the map falls back to the remembered value offered in the request.
type Fixed struct {
	values map[string]string
}

func NewFixed(values map[string]string) *Fixed {
	return &Fixed{values: maps.Clone(values)}
}

// Prompt implements resolver.Prompter.
func (f *Fixed) Prompt(_ context.Context, req resolver.Request) (string, error) {
	if v, ok := f.values[req.Name]; ok {
		return v, nil
	}
	if req.Initial != "" {
		return req.Initial, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrMissingValue, req.Name)
}
