// Package apperr defines the error taxonomy the admission pipeline's
// terminal handler dispatches on. Every error that should produce a specific
// HTTP status carries a Code; anything else falls back to 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a taxonomy member independent of its human message.
type Code string

const (
	CodeInputInvalid    Code = "input_invalid"
	CodeGeometryInvalid Code = "geometry_invalid"
	CodeSchemaInvalid   Code = "schema_invalid"
	CodeAuthMissing     Code = "auth_missing"
	CodeAuthInvalid     Code = "auth_invalid"
	CodeAuthExpired     Code = "auth_expired"
	CodeAuthRevoked     Code = "auth_revoked"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeQuotaExceeded   Code = "quota_exceeded"
	CodeRateLimited     Code = "rate_limited"
	CodeConflict        Code = "conflict"
	CodePayloadTooLarge Code = "payload_too_large"
	CodeInternal        Code = "internal"
)

var statusByCode = map[Code]int{
	CodeInputInvalid:    http.StatusBadRequest,
	CodeGeometryInvalid: http.StatusBadRequest,
	CodeSchemaInvalid:   http.StatusUnprocessableEntity,
	CodeAuthMissing:     http.StatusForbidden,
	CodeAuthInvalid:     http.StatusUnauthorized,
	CodeAuthExpired:     http.StatusUnauthorized,
	CodeAuthRevoked:     http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeQuotaExceeded:   http.StatusTooManyRequests,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeConflict:        http.StatusConflict,
	CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	CodeInternal:        http.StatusInternalServerError,
}

// Error is the single error type the pipeline's terminal handler
// pattern-matches on via errors.As, replacing the teacher's string-sniffing
// isXError helpers.
type Error struct {
	Code    Code
	Message string
	Detail  map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status this error should render as.
func (e *Error) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds a taxonomy error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a taxonomy code to an underlying error, preserving it for
// errors.Is/errors.As chains and logging.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetail attaches structured detail rendered in the response body.
func (e *Error) WithDetail(detail map[string]any) *Error {
	e.Detail = detail
	return e
}

// As extracts an *Error from err, returning nil if err does not carry one.
func As(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// Sentinel constructors mirroring the common cases the pipeline raises.

func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func InputInvalid(message string) *Error { return New(CodeInputInvalid, message) }
func GeometryInvalid(msg string) *Error  { return New(CodeGeometryInvalid, msg) }
func AuthMissing() *Error                { return New(CodeAuthMissing, "missing API key") }
func AuthInvalid() *Error                { return New(CodeAuthInvalid, "invalid API key") }
func AuthExpired() *Error                { return New(CodeAuthExpired, "API key expired") }
func QuotaExceeded(detail map[string]any) *Error {
	return New(CodeQuotaExceeded, "monthly quota exceeded").WithDetail(detail)
}
func RateLimited(detail map[string]any) *Error {
	return New(CodeRateLimited, "rate limit exceeded").WithDetail(detail)
}
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal error", cause)
}
