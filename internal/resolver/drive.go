package resolver

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/coderunner/internal/finitestate"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// Prompter asks the user for a single value. Returning an error abandons the run.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (string, error)
}

// Drive answers every pending request with p until the resolver is ready. There is no
// timeout beyond ctx: a prompter may block for as long as the user takes.
func Drive(ctx context.Context, r *Resolver, p Prompter) (*placeholder.Values, error) {
	for {
		switch r.State() {
		case finitestate.StateReady:
			return r.Args()
		case finitestate.StateCancelled:
			return nil, ErrCancelled
		}

		if err := ctx.Err(); err != nil {
			r.Cancel()
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		req, ok := r.Pending()
		if !ok {
			return nil, fmt.Errorf("%w: state is %s", ErrIncompleteResolution, r.State())
		}

		value, err := p.Prompt(ctx, req)
		if err != nil {
			r.Cancel()
			return nil, fmt.Errorf("%w: prompt for '%s': %w", ErrCancelled, req.Name, err)
		}

		if err := r.Supply(value); err != nil {
			return nil, err
		}
	}
}
