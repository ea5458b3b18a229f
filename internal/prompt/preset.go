package prompt

import (
	"context"
	"maps"

	"github.com/atlanticdynamic/coderunner/internal/resolver"
)

var _ resolver.Prompter = (*Preset)(nil)

// Preset answers the names given on the command line and asks next for the rest.
type Preset struct {
	values map[string]string
	next   resolver.Prompter
}

func NewPreset(values map[string]string, next resolver.Prompter) *Preset {
	return &Preset{values: maps.Clone(values), next: next}
}

// Prompt implements resolver.Prompter.
func (p *Preset) Prompt(ctx context.Context, req resolver.Request) (string, error) {
	if v, ok := p.values[req.Name]; ok {
		return v, nil
	}
	return p.next.Prompt(ctx, req)
}
