package model

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so callers can match
// either the precise error or the whole category with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

var (
	// Lookup errors
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrPlayerNotFound   = fmt.Errorf("player %w", ErrNotFound)
	ErrTrainingNotFound = fmt.Errorf("training %w", ErrNotFound)
	ErrMatchNotFound    = fmt.Errorf("match %w", ErrNotFound)

	// Authentication and registration errors
	ErrBadCredential     = fmt.Errorf("bad credential: %w", ErrInvalidCredentials)
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidRole       = errors.New("invalid role")

	// Lifecycle errors
	ErrProfileRequired = errors.New("player profile required")
	ErrMatchHasStats   = fmt.Errorf("match has recorded statistics: %w", ErrConstraintViolation)
)

// ValidationError reports a bad field value. The operation is not attempted.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes every ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnknownUser reports a failed username lookup. It matches both
// ErrUserNotFound and ErrInvalidCredentials so a login screen can treat it
// like a bad password.
func UnknownUser(username string) error {
	return fmt.Errorf("%w: %q: %w", ErrUserNotFound, username, ErrInvalidCredentials)
}
