package service

import (
	"errors"
	"fmt"

	"golang-price-tracker/internal/tracker/repository"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrIntervalConflict rejects an interval change while a scrape is imminent.
	ErrIntervalConflict = errors.New("interval change conflicts with the next scheduled run")
)

// ValidationError is returned for caller mistakes, before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound translates repository misses into ErrNotFound.
func notFound(what string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}
