package books

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")

	// ErrConflict is returned when a book with the same title already exists.
	ErrConflict = errors.New("a book with this title already exists")
)

// ValidationError describes a field that failed validation before any
// statement reached the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
