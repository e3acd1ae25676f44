package signup

import (
	"context"
	"errors"
)

// CodeUniqueViolation is the SQLSTATE the database reports when the email
// already exists.
const CodeUniqueViolation = "23505"

// Store persists validated signups.
type Store interface {
	Insert(ctx context.Context, req Request) error
}

// Counter reports how many signups exist.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// BackendError carries the discriminator a store attaches to a failed
// call.  Code is empty when the backend supplied none.
type BackendError struct {
	Code string
	Err  error
}

func (e *BackendError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code == "" {
		return "signup backend: " + msg
	}
	return "signup backend [" + e.Code + "]: " + msg
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsDuplicate reports whether err carries the unique-violation code.
func IsDuplicate(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Code == CodeUniqueViolation
}
