package settings

import "errors"

var (
	ErrUnsupportedExtension = errors.New("unsupported settings file extension")
	ErrParse                = errors.New("failed to parse settings")
	ErrInvalid              = errors.New("invalid settings")
)
