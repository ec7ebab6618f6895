// Package apperr defines the error taxonomy shared by services and
// handlers. Validation and auth errors carry messages safe to return to
// the caller; upstream and configuration errors are logged with detail and
// surfaced as a generic failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError indicates malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError indicates an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// AuthError indicates a missing/invalid credential (401) or an
// insufficient role (403).
type AuthError struct {
	Msg       string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.Msg }

// UpstreamError wraps a payment provider or backend failure. The wrapped
// error is for logs only and must not be returned to the caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigurationError indicates a required credential env var is absent.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// PaymentNotCompletedError indicates the provider reported any status
// other than a completed payment.
type PaymentNotCompletedError struct {
	Status string
}

func (e *PaymentNotCompletedError) Error() string {
	return fmt.Sprintf("payment not completed, provider status %q", e.Status)
}

// DuplicateError indicates a uniqueness rule violation, e.g. a second
// non-rejected review for the same product by the same user.
type DuplicateError struct {
	Msg string
}

func (e *DuplicateError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// Unauthorized builds a 401 AuthError.
func Unauthorized(msg string) error {
	return &AuthError{Msg: msg}
}

// Forbidden builds a 403 AuthError.
func Forbidden(msg string) error {
	return &AuthError{Msg: msg, Forbidden: true}
}

// Upstream wraps a provider/backend failure.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// Configuration builds a ConfigurationError.
func Configuration(msg string) error {
	return &ConfigurationError{Msg: msg}
}

// Duplicate builds a DuplicateError.
func Duplicate(format string, args ...interface{}) error {
	return &DuplicateError{Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		auth       *AuthError
		duplicate  *DuplicateError
		notPaid    *PaymentNotCompletedError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notPaid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &auth):
		if auth.Forbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.As(err, &duplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show the caller. Upstream and
// configuration failures are replaced with a generic message; everything
// else is surfaced verbatim.
func PublicMessage(err error) string {
	var (
		upstream *UpstreamError
		conf     *ConfigurationError
	)
	switch {
	case errors.As(err, &upstream):
		return "upstream request failed, please retry"
	case errors.As(err, &conf):
		return "service not configured"
	default:
		return err.Error()
	}
}
