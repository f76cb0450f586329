package apierror

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for translation into an HTTP response.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindPolicyRejection Kind = "policy_rejection"
	KindConflict        Kind = "conflict"
	KindAuthentication  Kind = "authentication"
	KindAuthorization   Kind = "authorization"
	KindNotFound        Kind = "not_found"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

// Status returns the HTTP status code the kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindPolicyRejection, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type APIError struct {
	Kind        Kind     `json:"-"`
	Code        string   `json:"code"`
	Message     string   `json:"error"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	HTTPStatus  int      `json:"-"`
	Err         error    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithSuggestions returns a copy of e carrying the given hints for the caller.
func (e *APIError) WithSuggestions(suggestions []string) *APIError {
	clone := *e
	clone.Suggestions = append([]string(nil), suggestions...)
	return &clone
}

// Wrap returns a copy of e that unwraps to cause.
func (e *APIError) Wrap(cause error) *APIError {
	clone := *e
	clone.Err = cause
	return &clone
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Kind: kindForStatus(status), Code: code, Message: message, Details: details, HTTPStatus: status}
}

func newKind(kind Kind, code string, message string) *APIError {
	return &APIError{Kind: kind, Code: code, Message: message, HTTPStatus: kind.Status()}
}

func Validation(code string, message string) *APIError {
	return newKind(KindValidation, code, message)
}

func PolicyRejection(code string, message string) *APIError {
	return newKind(KindPolicyRejection, code, message)
}

func Conflict(code string, message string) *APIError {
	return newKind(KindConflict, code, message)
}

func Authentication(code string, message string) *APIError {
	return newKind(KindAuthentication, code, message)
}

func Authorization(code string, message string) *APIError {
	return newKind(KindAuthorization, code, message)
}

func NotFound(code string, message string) *APIError {
	return newKind(KindNotFound, code, message)
}

func RateLimited(code string, message string) *APIError {
	return newKind(KindRateLimited, code, message)
}

func Internal(cause error) *APIError {
	e := newKind(KindInternal, CodeInternal, "Internal server error")
	e.Err = cause
	return e
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindInternal
	}
}
