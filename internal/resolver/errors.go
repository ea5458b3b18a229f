package resolver

import "errors"

var (
	ErrIncompleteResolution = errors.New("argument resolution is incomplete")
	ErrCancelled            = errors.New("argument resolution cancelled")
	ErrNotAwaitingInput     = errors.New("resolver is not awaiting input")
)
