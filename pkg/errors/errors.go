package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a remote resource does not exist. Drivers return it
// from Fetch as a valid result; it is never treated as a failure by the engine.
var ErrNotFound = errors.New("resource not found")

// IsNotFound reports whether err indicates an absent remote resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures descriptor validation issues. Validation failures
// are fatal and reported before any remote call is attempted.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any ValidationError regardless of field.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// AuthError indicates credential rejection, either while resolving a profile
// or on a remote call. Auth errors are fatal and never retried.
type AuthError struct {
	Profile string
	Err     error
}

// NewAuthError constructs an AuthError for the given profile.
func NewAuthError(profile string, err error) error {
	return &AuthError{Profile: profile, Err: err}
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Profile != "" {
		return fmt.Sprintf("authentication failed for profile %q: %v", e.Profile, e.Err)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// TransientError indicates a retryable remote condition such as throttling or
// a gateway failure. The engine retries these with bounded backoff.
type TransientError struct {
	Op         string
	StatusCode int
	Err        error
}

// NewTransientError constructs a TransientError for the given operation.
func NewTransientError(op string, statusCode int, err error) error {
	return &TransientError{Op: op, StatusCode: statusCode, Err: err}
}

func (e *TransientError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient error during %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// ProvisioningTimeoutError indicates a long-running operation did not reach a
// terminal provisioning state within the bounded polling window.
type ProvisioningTimeoutError struct {
	Resource string
	Err      error
}

// NewProvisioningTimeout constructs a ProvisioningTimeoutError.
func NewProvisioningTimeout(resource string, err error) error {
	return &ProvisioningTimeoutError{Resource: resource, Err: err}
}

func (e *ProvisioningTimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("provisioning of %s did not reach a terminal state: %v", e.Resource, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProvisioningTimeoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a non-retryable remote failure while reconciling a
// resource. It carries the resource identity for per-resource reporting.
type ExecutionError struct {
	Resource string
	Err      error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(resource string, err error) error {
	return &ExecutionError{Resource: resource, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Resource != "" {
		return fmt.Sprintf("execution error on %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Kind names the taxonomy bucket an error belongs to, for reporting.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case errors.Is(err, &ValidationError{}):
		return "validation"
	case IsAuth(err):
		return "auth"
	case IsTransient(err):
		return "transient"
	default:
		var timeoutErr *ProvisioningTimeoutError
		if errors.As(err, &timeoutErr) {
			return "provisioning_timeout"
		}
		return "execution"
	}
}
