package entities

import "fmt"

// ErrorType categorizes an ErrorDetail.
type ErrorType string

// Error types reported by the SDK.
const (
	ErrorAcquisition       ErrorType = "acquisition"
	ErrorNotFound          ErrorType = "not_found"
	ErrorTypeMismatch      ErrorType = "type_mismatch"
	ErrorNotWritable       ErrorType = "not_writable"
	ErrorRange             ErrorType = "range"
	ErrorUseAfterRelease   ErrorType = "use_after_release"
	ErrorAlreadyControlled ErrorType = "already_controlled"
	ErrorNoData            ErrorType = "no_data"
	ErrorThread            ErrorType = "thread"
	ErrorLifecycle         ErrorType = "lifecycle"
	ErrorConfig            ErrorType = "config"
	ErrorPanic             ErrorType = "panic"
	ErrorInternal          ErrorType = "internal"
)

func (t ErrorType) String() string { return string(t) }

// ErrorDetail is the structured form of an SDK error. Callback faults are
// logged with it before the callback returns its inert value to the host.
type ErrorDetail struct {
	// Details holds extra context, e.g. the dataref name.
	Details map[string]any `json:"details,omitempty"`

	Message string    `json:"message"`
	Type    ErrorType `json:"type"`

	// Code narrows Type, e.g. the handle kind or the config field.
	Code string `json:"code,omitempty"`

	// Stack is set for panics.
	Stack []byte `json:"stack,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != ErrorInternal {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}

// NewErrorDetail creates an ErrorDetail of the given type.
func NewErrorDetail(typ ErrorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: typ, Message: message}
}

// WithDetails attaches details and returns the same ErrorDetail.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

// WithCode sets the code and returns the same ErrorDetail.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
