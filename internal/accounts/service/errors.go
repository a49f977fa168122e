package service

import "errors"

// Domain failures. Anything else returned by the services is an
// infrastructure error and should be treated as opaque.
var (
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
)
