package sieve

import "errors"

var (
	ErrInvalidSize         = errors.New("sieve: size must not be negative")
	ErrInvalidWorkers      = errors.New("sieve: worker count must be positive")
	ErrOutOfRange          = errors.New("sieve: range out of bounds")
	ErrNotBootstrapped     = errors.New("sieve: bootstrap has not completed")
	ErrAlreadyBootstrapped = errors.New("sieve: bootstrap already ran")
	ErrUnknownStrategy     = errors.New("sieve: unknown strategy")
	ErrWorkerFault         = errors.New("sieve: worker fault")
	ErrFaulted             = errors.New("sieve: run aborted by an earlier worker fault")
)
