package dedup

import "fmt"

// ErrorKind represents the category of engine failure.
type ErrorKind int

const (
	// KindStorageUnavailable indicates the fingerprint store could not be
	// reached or timed out. Retryable; retry policy belongs to the caller.
	KindStorageUnavailable ErrorKind = iota
	// KindInvalidComment indicates a malformed candidate comment (missing
	// file path or empty body). Not retryable.
	KindInvalidComment
	// KindNotFound indicates no fingerprint exists for the given text.
	KindNotFound
)

// String returns the wire name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindStorageUnavailable:
		return "STORAGE_UNAVAILABLE"
	case KindInvalidComment:
		return "INVALID_COMMENT"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Error represents an engine failure with its classification.
type Error struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the failure is worth retrying.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewStorageUnavailableError wraps a store failure as retryable.
func NewStorageUnavailableError(message string, cause error) *Error {
	return &Error{
		Kind:      KindStorageUnavailable,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewInvalidCommentError reports a malformed candidate comment.
func NewInvalidCommentError(message string, cause error) *Error {
	return &Error{
		Kind:      KindInvalidComment,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// NewNotFoundError reports a missing fingerprint.
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   message,
		Retryable: false,
	}
}
