package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Handlers map them to HTTP statuses.
var (
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("admin access required")
	ErrValidation = errors.New("validation failed")
)

// Authentication failures, all of which are ErrAuth
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrMissingToken       = fmt.Errorf("%w: token is missing", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: token is invalid", ErrAuth)
)

// validationError carries a message safe to show the caller
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
