// Package resolver fills in the parameters of a script from the config block, then from
// the user, one prompt at a time.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/atlanticdynamic/coderunner/internal/finitestate"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// Names of the arguments seeded before any parameter is resolved.
const (
	ArgTimestamp  = "timestamp"
	ArgWorkingDir = "working_dir"
)

// Request describes the value the resolver is waiting for.
type Request struct {
	Name    string
	Label   string
	Initial string
}

// Resolver walks the parameter list in order. A parameter found in the config block is
// copied over immediately; any other parameter suspends the resolver until Supply is called.
type Resolver struct {
	mu      sync.Mutex
	params  []string
	config  *placeholder.Values
	memory  *Memory
	args    *placeholder.Values
	pending Request
	fsm     finitestate.Machine
	logger  *slog.Logger
}

// New creates a resolver and runs the first scan. The seed values (usually timestamp and
// working_dir) count as already resolved. A nil memory gets a fresh one.
func New(
	params []string,
	config *placeholder.Values,
	memory *Memory,
	seed *placeholder.Values,
	opts ...Option,
) (*Resolver, error) {
	r := &Resolver{
		params: params,
		config: config,
		memory: memory,
		args:   seed.Clone(),
		logger: slog.Default().WithGroup("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.memory == nil {
		r.memory = NewMemory()
	}

	machine, err := finitestate.NewResolutionMachine(r.logger.Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution state machine: %w", err)
	}
	r.fsm = machine

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.scan(); err != nil {
		return nil, err
	}
	return r, nil
}

// scan must be called with mu held and the machine in the scanning state.
func (r *Resolver) scan() error {
	for _, name := range r.params {
		if r.args.Has(name) {
			continue
		}
		if v, ok := r.config.Get(name); ok {
			r.logger.Debug("Resolved from config", "name", name)
			r.args.Set(name, v)
			continue
		}

		initial, _ := r.memory.Get(name)
		r.pending = Request{Name: name, Label: Label(name), Initial: initial}
		r.logger.Debug("Awaiting input", "name", name)
		return r.fsm.Transition(finitestate.StateAwaitingInput)
	}

	r.pending = Request{}
	r.logger.Debug("All parameters resolved", "count", len(r.params))
	return r.fsm.Transition(finitestate.StateReady)
}

// State returns the current resolution state.
func (r *Resolver) State() string {
	return r.fsm.GetState()
}

// Pending returns the outstanding request, if the resolver is waiting for one.
func (r *Resolver) Pending() (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fsm.GetState() != finitestate.StateAwaitingInput {
		return Request{}, false
	}
	return r.pending, true
}

// Supply answers the pending request, remembers the value for later runs and resumes scanning.
func (r *Resolver) Supply(value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fsm.GetState() != finitestate.StateAwaitingInput {
		return fmt.Errorf("%w: state is %s", ErrNotAwaitingInput, r.fsm.GetState())
	}

	name := r.pending.Name
	r.args.Set(name, value)
	r.memory.Set(name, value)

	if err := r.fsm.Transition(finitestate.StateScanning); err != nil {
		return err
	}
	return r.scan()
}

// Cancel abandons resolution. It is a no-op once the resolver is ready or already cancelled.
func (r *Resolver) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fsm.TransitionBool(finitestate.StateCancelled) {
		r.logger.Debug("Resolution cancelled", "pending", r.pending.Name)
		r.pending = Request{}
	}
}

// Args returns the resolved arguments in resolution order.
func (r *Resolver) Args() (*placeholder.Values, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch state := r.fsm.GetState(); state {
	case finitestate.StateReady:
		return r.args.Clone(), nil
	case finitestate.StateCancelled:
		return nil, fmt.Errorf("%w: %w", ErrIncompleteResolution, ErrCancelled)
	default:
		return nil, fmt.Errorf("%w: waiting for '%s'", ErrIncompleteResolution, r.pending.Name)
	}
}

// Label turns a parameter name into a prompt label: `user_name` becomes `User Name`.
func Label(name string) string {
	var words []string
	for _, w := range strings.Split(name, "_") {
		if w == "" {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words = append(words, string(runes))
	}
	return strings.Join(words, " ")
}
