package request

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest matches every request error, including ErrEmptyBatch.
	ErrInvalidRequest = errors.New("request: invalid scramble request")

	// ErrEmptyBatch is returned when a batch names no rounds.
	ErrEmptyBatch = fmt.Errorf("%w: must specify at least one round", ErrInvalidRequest)
)

// InvalidRequestError identifies the round and raw text that could not be
// resolved. Err carries the cause, e.g. a *registry.UnknownPuzzleError.
type InvalidRequestError struct {
	Title string
	Raw   string
	Err   error
}

func (e *InvalidRequestError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("request: invalid scramble request %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("request: round %q: invalid scramble request %q: %v", e.Title, e.Raw, e.Err)
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}
