// errors.go - User-facing error taxonomy for provider and pipeline failures

package provider

import "fmt"

// Kind classifies a failure into one of the user-facing error classes.
// Every error that reaches a handler carries exactly one Kind; handlers
// surface the message as-is and never crash on any of them.
type Kind int

const (
	KindNotConfigured Kind = iota
	KindAuth
	KindQuotaExhausted
	KindValidation
	KindProvider
	KindNetwork
	KindNoModelSelected
)

// String returns the machine-readable name of the kind (used in logs only,
// user-facing text is the Message).
func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindAuth:
		return "auth_error"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindValidation:
		return "validation_error"
	case KindProvider:
		return "provider_error"
	case KindNetwork:
		return "network_error"
	case KindNoModelSelected:
		return "no_model_selected"
	}
	return "unknown"
}

// Error is a classified failure with a localized, user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, optional
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error with a fixed message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a classified error with a formatted message. The last
// argument, if it is an error, is also retained as the underlying cause.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	var cause error
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			cause = err
		}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the Kind from an error, defaulting to KindProvider for
// errors produced outside the taxonomy.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindProvider
}
