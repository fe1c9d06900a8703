package upm

import (
	"fmt"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
)

// Status is the closed set of outcome codes an add request can report.
type Status int

const (
	// StatusUnknown covers failures outside the classified set.
	StatusUnknown Status = iota

	// StatusConflict means the package is already installed. Callers
	// treat it as success.
	StatusConflict

	// StatusForbidden means the registry refused access.
	StatusForbidden

	// StatusInvalidParameter means the package identifier was rejected.
	StatusInvalidParameter

	// StatusNotFound means the package or version is not published.
	StatusNotFound
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusConflict:
		return "conflict"
	case StatusForbidden:
		return "forbidden"
	case StatusInvalidParameter:
		return "invalid-parameter"
	case StatusNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// StatusError is the error an AddRequest completes with.
type StatusError struct {
	Status  Status
	Package string
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Package, e.Message, e.Status)
}

// Unwrap returns the underlying error, if any.
func (e *StatusError) Unwrap() error {
	return e.Wrapped
}

// AddRequest is a handle to an in-flight package install.
type AddRequest struct {
	identifier string
	done       chan struct{}

	// written once by the worker goroutine before done is closed.
	version string
	err     error
}

// Identifier returns the package identifier the request was made with.
func (r *AddRequest) Identifier() string {
	return r.identifier
}

// IsCompleted reports whether the request has finished.
func (r *AddRequest) IsCompleted() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Err returns the request outcome. It is nil on success and before
// completion; call after IsCompleted or Wait.
func (r *AddRequest) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Version returns the resolved version once the request succeeded.
func (r *AddRequest) Version() string {
	select {
	case <-r.done:
		return r.version
	default:
		return ""
	}
}

// Wait blocks until the request completes or the timeout elapses. The
// wait yields to the scheduler; there is no busy spin. A timeout
// surfaces as E311 and leaves the request running in the background.
func (r *AddRequest) Wait(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
		return r.err
	case <-timer.C:
		return errors.New("E311").
			WithDetail(fmt.Sprintf("Gave up waiting for %s after %s", r.identifier, timeout))
	}
}
