package remote

import (
	"errors"
	"fmt"
)

// Common errors returned by remote store operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, remote.ErrNoToken) {
//	    // prompt the user to re-authenticate
//	}
var (
	// ErrNoToken is returned when the auth collaborator has no valid
	// bearer token. This is a precondition failure, not a network failure.
	ErrNoToken = errors.New("no auth token available")

	// ErrAbsent is returned by Binding.Read when no remote document exists
	// for the configured name.
	ErrAbsent = errors.New("no remote document exists")
)

// ReadError reports a failed read against the remote store (unreachable
// store, or the object missing when it was expected to exist).
type ReadError struct {
	// Status is the HTTP status code, 0 when the request never completed.
	Status int
	Err    error
}

func (e *ReadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote read failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a rejected create or update (auth expired, quota,
// network). The caller decides retry policy; this package never retries.
type WriteError struct {
	// Op is "create" or "update".
	Op string
	// Status is the HTTP status code, 0 when the request never completed.
	Status int
	Err    error
}

func (e *WriteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsAuthFailure reports whether err looks like an expired or missing
// credential, either a precondition failure or a 401/403 from the store.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrNoToken) {
		return true
	}
	var re *ReadError
	if errors.As(err, &re) {
		return re.Status == 401 || re.Status == 403
	}
	var we *WriteError
	if errors.As(err, &we) {
		return we.Status == 401 || we.Status == 403
	}
	return false
}
