package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation marks a rejected state transition or malformed request.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")

	// ErrDomain marks missing or inconsistent reference data, such as a cost
	// index series that does not cover a requested date.
	ErrDomain = errors.New("domain error")

	ErrNonTermination       = errors.New("conflict resolution did not terminate")
	ErrConcurrencyConflict  = errors.New("concurrent modification")
	ErrDuplicateOrderingKey = errors.New("duplicate right of occupancy id")
)

// MissingCostIndexError reports a date with no covering cost index entry.
type MissingCostIndexError struct {
	Date time.Time
}

func (e *MissingCostIndexError) Error() string {
	return fmt.Sprintf(
		"%s: date %s precedes cost index coverage",
		ErrDomain.Error(),
		e.Date.Format(time.DateOnly),
	)
}

func (e *MissingCostIndexError) Unwrap() error {
	return ErrDomain
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Domainf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}
