package placeholder

import "errors"

var (
	ErrUndefinedReference = errors.New("undefined placeholder")
	ErrInvalidPlaceholder = errors.New("invalid placeholder")
)
