package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no usable credentials were presented.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")

	// ErrInvalidToken is returned when a token is presented but cannot be resolved.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned by login for an unknown email, a wrong
	// password or an inactive account alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrThrottled is returned when a client exceeded its request budget.
	ErrThrottled = errors.New("request was throttled")
)

// ValidationError carries field-scoped messages for malformed or conflicting input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation returns a ValidationError with a single message.
func NewValidation(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add appends msg to the messages of field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies all messages of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it holds messages and nil otherwise, so callers can
// collect problems and return the result directly.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// PermissionError means the actor is authenticated but not entitled to the action.
type PermissionError struct {
	Detail string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Detail
}

// Forbidden returns a PermissionError with the given detail.
func Forbidden(detail string) *PermissionError {
	return &PermissionError{Detail: detail}
}

// NotFoundError means the addressed resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound returns a NotFoundError for the named resource.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPermission reports whether err is or wraps a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BadRequestError means the request could not be read at all, as opposed to
// a field failing validation.
type BadRequestError struct {
	Detail string
}

func (e *BadRequestError) Error() string {
	return "bad request: " + e.Detail
}

// BadRequest returns a BadRequestError with the given detail.
func BadRequest(detail string) *BadRequestError {
	return &BadRequestError{Detail: detail}
}
