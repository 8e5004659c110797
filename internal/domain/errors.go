package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers classify with errors.Is; every rejection happens
// before any write.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrLookup     = errors.New("address lookup failed")
)

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
