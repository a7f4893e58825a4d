// Package errors defines the failure kinds reported by the ingest and sweep operations.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an operation failure
type ErrorType string

const (
	ErrorTypeScheduleState ErrorType = "schedule_state"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeDispatch      ErrorType = "dispatch"
	ErrorTypeInternal      ErrorType = "internal"
)

// OpError carries the kind of failure alongside the wrapped cause
type OpError struct {
	Type    ErrorType
	Message string
	err     error
}

func (e *OpError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.err
}

func NewScheduleStateError(msg string, err error) *OpError {
	return &OpError{Type: ErrorTypeScheduleState, Message: msg, err: err}
}

func NewStorageError(msg string, err error) *OpError {
	return &OpError{Type: ErrorTypeStorage, Message: msg, err: err}
}

func NewDispatchError(msg string, err error) *OpError {
	return &OpError{Type: ErrorTypeDispatch, Message: msg, err: err}
}

func NewInternalError(msg string, err error) *OpError {
	return &OpError{Type: ErrorTypeInternal, Message: msg, err: err}
}

// TypeOf returns the kind of the first OpError in the chain, or internal
func TypeOf(err error) ErrorType {
	var opErr *OpError
	if stderrors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeInternal
}
