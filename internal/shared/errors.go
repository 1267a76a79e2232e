package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")

	// Job errors
	ErrSpawnFailed     = fmt.Errorf("failed to start process")
	ErrCanceled        = fmt.Errorf("operation canceled")
	ErrArtifactMissing = fmt.Errorf("artifact not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// ErrorKind categorizes failures surfaced to HTTP callers.
type ErrorKind string

const (
	KindMissingCredential    ErrorKind = "missing_credential"
	KindProviderError        ErrorKind = "provider_error"
	KindTransportFailure     ErrorKind = "transport_failure"
	KindArtifactMissing      ErrorKind = "artifact_missing"
	KindArtifactCorrupt      ErrorKind = "artifact_corrupt"
	KindProcessFailed        ErrorKind = "process_failed"
	KindTimedOut             ErrorKind = "timed_out"
	KindConfigurationMissing ErrorKind = "configuration_missing"
	KindCanceled             ErrorKind = "canceled"
	KindInvalidRequest       ErrorKind = "invalid_request"
)

// Error is a classified failure carrying its [ErrorKind].
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewError creates an [Error] of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a short human-readable description suitable for a UI.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindMissingCredential:
		return "Missing access token"
	case KindTimedOut:
		return "Scraper timed out"
	case KindProcessFailed:
		return "Scraper failed"
	case KindArtifactCorrupt:
		return "Scraper output could not be parsed"
	case KindConfigurationMissing:
		return "OAuth configuration is incomplete"
	case KindCanceled:
		return "Scrape was canceled"
	case KindTransportFailure:
		return "Could not reach the Wahoo API"
	default:
		return e.Message
	}
}

// KindOf returns the [ErrorKind] of err, or the empty kind if err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
