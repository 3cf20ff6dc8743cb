package errors

import (
	stderrors "errors"
)

// Report is the document a command line tool writes to stderr when asked for
// machine-readable output:
//
//	{"error":{"code":"ALREADY_EXISTS","message":"...","retryable":false,"exit_code":4}}
type Report struct {
	Error ReportedError `json:"error"`
}

// ReportedError is the body of a Report. ExitCode repeats the process status
// so scripts that capture only stderr still see it.
type ReportedError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	ExitCode  int            `json:"exit_code"`
	Cause     string         `json:"cause,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Report renders e for machine-readable output. The cause is included
// when it says more than the message.
func (e *AppError) Report() Report {
	r := ReportedError{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		ExitCode:  e.ExitCode,
		Details:   e.Details,
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		r.Cause = e.Cause.Error()
	}
	return Report{Error: r}
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
