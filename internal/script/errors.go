package script

import "errors"

var (
	ErrNoBackingFile = errors.New("document has no backing file")
	ErrSyntax        = errors.New("script syntax error")
)
