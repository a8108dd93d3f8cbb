package scheduling

import (
	"errors"
	"fmt"
)

// ValidationError signals a booking request that cannot be resolved into a
// concrete date and time.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// UnsupportedOperationError signals that a provider structurally cannot
// perform the requested action. It must not be retried; callers route the
// request to the pending-booking workflow instead.
type UnsupportedOperationError struct {
	Provider  string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Provider, e.Operation)
}

// AuthExpiredError signals that a token refresh failed. The integration has
// been marked expired and needs out-of-band re-authorization.
type AuthExpiredError struct {
	Provider string
	Err      error
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%s credentials expired: %v", e.Provider, e.Err)
}

func (e *AuthExpiredError) Unwrap() error { return e.Err }

// ProviderError signals a non-auth remote failure. Retry policy is left to
// the caller.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError signals a local persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError signals that a referenced record does not exist within the
// tenant's scope.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IsUnsupported reports whether err is an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	var target *UnsupportedOperationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
