package runner

import "errors"

var (
	ErrSpawn         = errors.New("failed to start interpreter")
	ErrInvalidSource = errors.New("builtin interpreter could not parse script")
	ErrJobNotDone    = errors.New("job has not finished")
)
