package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal")
)

// ServiceError wraps a sentinel error with a specific code and message for
// the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func Forbidden(code, message string) *ServiceError {
	return NewError(ErrForbidden, code, message)
}

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

func Conflict(code, message string) *ServiceError {
	return NewError(ErrConflict, code, message)
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}

// CascadeError reports a failure mid-way through an ordered multi-collection
// write. Steps before the named one are already committed and are not rolled
// back; the step name lets a caller or operator distinguish "nothing
// happened" from "a documented partial state exists".
type CascadeError struct {
	Op   string // the cascade, e.g. "create_channel"
	Step string // the failing step, e.g. "guild_list_append"
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %v", e.Op, e.Step, e.Err)
}

func (e *CascadeError) Unwrap() error { return ErrInternal }

// Cascade wraps a step failure of the named cascade.
func Cascade(op, step string, err error) *CascadeError {
	return &CascadeError{Op: op, Step: step, Err: err}
}
