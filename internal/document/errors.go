package document

import "errors"

var (
	ErrRegionOutOfRange = errors.New("region out of range")
	ErrNoSuchLine       = errors.New("no such line")
	ErrNoSuchBlock      = errors.New("no such block")
)
