package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable indicates the clinical backend could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrReferenceNotFound indicates a citation number has no stored source text
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrPanelClosed indicates the reference panel was torn down
	ErrPanelClosed = errors.New("panel closed")

	// ErrStreamClosed indicates a streamed answer already completed
	ErrStreamClosed = errors.New("stream closed")
)

// BackendError is returned by the clinical backend client for non-2xx responses
// and transport failures.
type BackendError struct {
	Operation  string
	StatusCode int // 0 for transport failures
	Message    string
}

func (e *BackendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend %s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("backend %s failed: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Unwrap maps the failure onto a domain sentinel so callers can use errors.Is.
func (e *BackendError) Unwrap() error {
	switch {
	case e.StatusCode == 0 || e.StatusCode >= 500:
		return ErrServiceUnavailable
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode == 401:
		return ErrUnauthorized
	case e.StatusCode == 400 || e.StatusCode == 422:
		return ErrInvalidInput
	default:
		return nil
	}
}

// Retryable reports whether a retry against a fallback configuration makes sense.
func (e *BackendError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 404
}

// LoginPath is where unauthenticated users are sent to sign in
const LoginPath = "/login"

// AuthRequiredError is returned when a citation leads to a panel that needs a
// signed-in user. The caller closes the current panel and redirects.
type AuthRequiredError struct {
	Target     NavigationKind
	Redirect   string
	ClosePanel bool
}

// NewAuthRequiredError builds the redirect-to-login error for target
func NewAuthRequiredError(target NavigationKind) *AuthRequiredError {
	return &AuthRequiredError{Target: target, Redirect: LoginPath, ClosePanel: true}
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("sign in required to open %s", e.Target)
}

// Unwrap lets errors.Is match ErrUnauthorized
func (e *AuthRequiredError) Unwrap() error {
	return ErrUnauthorized
}
