package services

import "fmt"

// ValidationError reports a request the store was never asked to handle.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SyncFailure means the batch's unit of work was rolled back. Nothing from
// the batch is stored and the client should resend all of it.
type SyncFailure struct {
	Err error
}

func (e *SyncFailure) Error() string {
	return "sync failed: " + e.Err.Error()
}

func (e *SyncFailure) Unwrap() error {
	return e.Err
}

// ReadFailure wraps a store error from a snapshot or change probe.
type ReadFailure struct {
	Op  string
	Err error
}

func (e *ReadFailure) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *ReadFailure) Unwrap() error {
	return e.Err
}
