package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed input; computation was not attempted.
	ErrValidation = errors.New("ledger: validation failed")
	// ErrEmptyPeriod indicates a statement was requested for a period with no
	// matching events.
	ErrEmptyPeriod = errors.New("ledger: no events in period")
	// ErrNotFound indicates the referenced event does not exist.
	ErrNotFound = errors.New("ledger: event not found")
)

// Errorf wraps a sentinel with formatted context.
func Errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
