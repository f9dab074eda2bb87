package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations.
var (
	// ErrUnknownPuzzle matches any *UnknownPuzzleError.
	ErrUnknownPuzzle = errors.New("registry: unknown puzzle")

	// ErrCapabilityInit matches any *CapabilityInitError.
	ErrCapabilityInit = errors.New("registry: puzzle failed to initialize")

	// ErrDuplicatePuzzle is returned by New when two definitions share a short name.
	ErrDuplicatePuzzle = errors.New("registry: duplicate puzzle short name")
)

// UnknownPuzzleError reports a short name with no registered definition.
type UnknownPuzzleError struct {
	ID string
}

func (e *UnknownPuzzleError) Error() string {
	return fmt.Sprintf("registry: unknown puzzle %q", e.ID)
}

func (e *UnknownPuzzleError) Is(target error) bool {
	return target == ErrUnknownPuzzle
}

// CapabilityInitError reports a constructor failure. It is permanent for
// the life of the registry.
type CapabilityInitError struct {
	ID  string
	Err error
}

func (e *CapabilityInitError) Error() string {
	return fmt.Sprintf("registry: puzzle %q failed to initialize: %v", e.ID, e.Err)
}

func (e *CapabilityInitError) Unwrap() error {
	return e.Err
}

func (e *CapabilityInitError) Is(target error) bool {
	return target == ErrCapabilityInit
}
