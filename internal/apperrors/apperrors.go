// Package apperrors holds the sentinel errors shared across services and
// controllers. Controllers translate them into status/message JSON pairs.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "does not exist" and "exists but not yours".
	// Keeping the two indistinguishable avoids leaking link existence.
	ErrNotFound = errors.New("URL not found")

	ErrAliasTaken      = errors.New("custom alias already in use")
	ErrEmailTaken      = errors.New("user with this email already exists")
	ErrInvalidLogin    = errors.New("invalid email or password")
	ErrNoCredits       = errors.New("no generation credits left")
	ErrPremiumRequired = errors.New("premium plan required")
	ErrInvalidUTMField = errors.New("invalid UTM field")
)

// ValidationError reports a field-level input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
