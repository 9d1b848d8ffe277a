package engine

import "errors"

// Resolution errors.
var (
	ErrComponentNotFound = errors.New("component not found")
	ErrPartNotFound      = errors.New("part not found")
	ErrComponentCycle    = errors.New("component uses itself")
)

// Simulation errors.
var (
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrInputTypeMismatch = errors.New("input type mismatch")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConsistency       = errors.New("connection is not consistent")
	ErrUnreachableState  = errors.New("unreachable state")
	ErrPropagationLimit  = errors.New("propagation limit exceeded")
)
