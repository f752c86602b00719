package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Handlers translate them to HTTP status
// codes; repositories and services wrap them with context.
var (
	// Request errors
	ErrBadRequest = errors.New("bad request")

	// Authentication errors
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Storage errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrPersistence   = errors.New("persistence error")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Kindf returns an error of the given kind carrying a formatted message and,
// when cause is non-nil, the cause as well. Both kind and cause match errors.Is.
func Kindf(kind, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
