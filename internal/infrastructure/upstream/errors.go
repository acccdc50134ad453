package upstream

import "errors"

var (
	// ErrProcessTimeout is returned when the process did not exit before the deadline
	ErrProcessTimeout = errors.New("upstream process timed out")
	// ErrProcessStart is returned when the executable could not be launched
	ErrProcessStart = errors.New("upstream process could not be started")
)
