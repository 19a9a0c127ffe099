package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies gateway failures so callers can react differently
// to, say, a validation problem versus a dropped connection.
type ErrorKind string

const (
	KindAuth       ErrorKind = "AUTH"
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindNetwork    ErrorKind = "NETWORK"
	KindTimeout    ErrorKind = "TIMEOUT"
	KindUpstream   ErrorKind = "UPSTREAM"
)

// APIError is the error type returned by every gateway operation.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string

	// Fields carries per-field validation messages when Kind is
	// KindValidation and the server enumerated them.
	Fields map[string]string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// kindForStatus maps an HTTP status code to an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusConflict ||
		status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUpstream
	}
}
