package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an application error for transport mapping.
type Kind int

// Kind constants define the error taxonomy surfaced to API callers.
const (
	// KindInternal marks failures that are not the caller's fault.
	KindInternal Kind = iota
	// KindValidation marks bad, missing, or duplicate field values.
	KindValidation
	// KindAuthentication marks rejected credentials.
	KindAuthentication
	// KindNotFound marks a missing entity.
	KindNotFound
	// KindPermission marks unauthenticated access to a protected route.
	KindPermission
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	default:
		return "internal"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind                // Error classification.
	Message string              // Caller-facing message.
	Fields  map[string][]string // Per-field messages for validation errors.
	Err     error               // Wrapped cause, never exposed to callers.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validation builds a validation error from per-field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// FieldError builds a validation error for a single field.
func FieldError(field, message string) *Error {
	return Validation(map[string][]string{field: {message}})
}

// NotFound builds a not-found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "not found"
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// Authentication builds a credential rejection error.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Permission builds an unauthenticated access error.
func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAuthentication:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
