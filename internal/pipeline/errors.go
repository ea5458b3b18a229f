package pipeline

import "errors"

var (
	ErrNotInBlock    = errors.New("selection is not inside a script block")
	ErrBlockNotFound = errors.New("no matching block")
	ErrNotResolved   = errors.New("plan has no resolved arguments")
)
