package entities

import (
	"errors"
	"fmt"
)

// ResolutionError aborts a sync batch: an entity could not be found or created.
type ResolutionError struct {
	Entity string
	Name   string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Entity, e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// AsResolutionError attempts to unwrap err into a *ResolutionError.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr, true
	}
	return nil, false
}
