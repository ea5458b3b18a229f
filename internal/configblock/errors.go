package configblock

import "errors"

var (
	ErrUndefinedConfigReference = errors.New("config value references an undefined key")
	ErrInvalidConfigValue       = errors.New("invalid config value")
)
