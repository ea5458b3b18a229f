package finitestate

import (
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Argument resolution states.
const (
	StateScanning      = "scanning"       // looking for the next unresolved parameter
	StateAwaitingInput = "awaiting_input" // suspended until a value is supplied
	StateReady         = "ready"          // every parameter has a value (terminal)
	StateCancelled     = "cancelled"      // the user abandoned the run (terminal)
)

// ResolutionTransitions defines the suspend/resume loop of argument resolution.
var ResolutionTransitions = map[string][]string{
	StateScanning:      {StateAwaitingInput, StateReady, StateCancelled},
	StateAwaitingInput: {StateScanning, StateCancelled},
	StateReady:         {},
	StateCancelled:     {},
}

// NewResolutionMachine creates a resolution machine in the scanning state.
func NewResolutionMachine(handler slog.Handler) (Machine, error) {
	return fsm.New(handler, StateScanning, ResolutionTransitions)
}
