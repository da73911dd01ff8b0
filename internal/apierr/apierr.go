// Package apierr defines the error taxonomy shared by the transport layer,
// the domain services and the stores.
//
// Pre-flight validation failures never reach the network and carry per-field
// messages. Backend rejections are mapped by status: 401 invalidates the
// session, 404 means a missing entity, 409 a conflict, any other structured
// 4xx a validation failure, and everything else a generic request error.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionExpired marks an invalid or expired session credential. It is
// handled centrally by the transport (purge and redirect) and never needs
// per-call handling.
var ErrSessionExpired = errors.New("la sesión ha expirado")

// FieldError is one structured validation message for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the per-field messages of a rejected payload,
// either from the local pre-flight checks or from the backend errors list.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// Validation builds a ValidationError from a fallback message and fields.
func Validation(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// AuthError is a login or registration rejected by the backend.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConflictError is a 409 rejection, e.g. a duplicate catalog service name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError is returned when the backend has no entity for the id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "recurso no encontrado"
	}
	return e.Message
}

// RequestError is the catch-all for transport failures and unexpected
// backend statuses.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("error de solicitud (status %d)", e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
