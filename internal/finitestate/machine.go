// Package finitestate wraps go-fsm with the two state machines used by a run: the job
// lifecycle and the argument-resolution loop.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Job lifecycle states.
const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
	StatusUnknown  = fsm.StatusUnknown
)

// JobTransitions is the lifecycle of a single script run. A job runs once, so there is no
// path back from Stopped.
var JobTransitions = map[string][]string{
	StatusNew:      {StatusBooting, StatusError},
	StatusBooting:  {StatusRunning, StatusStopping, StatusError},
	StatusRunning:  {StatusStopping, StatusError},
	StatusStopping: {StatusStopped, StatusError},
	StatusStopped:  {},
	StatusError:    {},
}

// SubscriberOption configures a state channel.
type SubscriberOption = fsm.SubscriberOption

// WithSyncTimeout sets a timeout for synchronous broadcast operations.
var WithSyncTimeout = fsm.WithSyncTimeout

// Machine is the subset of go-fsm used across the module.
type Machine interface {
	// Transition attempts to transition the state machine to the specified state.
	Transition(state string) error

	// TransitionBool attempts to transition the state machine to the specified state.
	TransitionBool(state string) bool

	// TransitionIfCurrentState transitions only when the machine is in currentState.
	TransitionIfCurrentState(currentState, newState string) error

	// SetState sets the state of the state machine to the specified state.
	SetState(state string) error

	// GetState returns the current state of the state machine.
	GetState() string

	// GetStateChan returns a channel that emits the state whenever it changes.
	// The channel is closed when the provided context is canceled.
	GetStateChan(ctx context.Context) <-chan string

	// GetStateChanWithOptions returns a channel with custom configuration options.
	GetStateChanWithOptions(ctx context.Context, opts ...SubscriberOption) <-chan string
}

// NewJobMachine creates the lifecycle machine for a script run.
func NewJobMachine(handler slog.Handler) (Machine, error) {
	return fsm.New(handler, StatusNew, JobTransitions)
}
