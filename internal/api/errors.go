package api

import "fmt"

// ErrorWithStatusCode is an error carrying the HTTP status it maps to.
// Errors without one are reported as internal server errors.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ErrorWithStatusCode) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error { return e.Err }

// StatusError returns an ErrorWithStatusCode wrapping err.
func StatusError(status int, err error) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: err.Error(), StatusCode: status, Err: err}
}

// StatusErrorf formats a message into an ErrorWithStatusCode.
func StatusErrorf(status int, format string, args ...any) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: status}
}
