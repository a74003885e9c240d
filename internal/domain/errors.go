package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrProcessFinished = errors.New("process is already completed or aborted")
)
