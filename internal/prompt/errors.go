package prompt

import "errors"

var (
	ErrMissingValue = errors.New("no value for parameter")
	ErrAborted      = errors.New("prompt aborted")
)
