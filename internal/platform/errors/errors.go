package errors

import stderrors "errors"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message surfaced to the host
	Metadata map[string]string // Additional context (ids, limits) for notifications
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Kind returns the taxonomy bucket for the error code.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.Code.Kind()
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for notification templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound builds a not-found error for the given entity kind and id.
func NotFound(code Code, entity, id string) *Error {
	return WithMetadata(code, entity+" not found: "+id, map[string]string{
		"entity": entity,
		"id":     id,
	})
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Kind()
	}
	return KindUnknown
}

// IsValidation reports whether err carries any validation kind.
func IsValidation(err error) bool {
	return KindOf(err).IsValidation()
}

// IsNotFound reports whether err carries a not-found code.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
