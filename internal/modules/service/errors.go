package service

import (
	"errors"
	"strings"
)

// Service layer errors for better error handling
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrForbidden       = errors.New("forbidden: admin role required")

	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError carries one message per violated field so callers see every
// problem at once, not just the first.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
