package gstd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/kbukum/gstclient/errors"
	"github.com/kbukum/gstclient/httpclient"
)

// Kind classifies where a request failed.
type Kind int

const (
	// KindInvalidBaseAddress: the base address is not an absolute http(s) URL,
	// or the rest of the client configuration failed validation.
	KindInvalidBaseAddress Kind = iota + 1
	// KindInvalidRequestPath: the base address and resource path do not compose.
	KindInvalidRequestPath
	// KindTransport: no response was received.
	KindTransport
	// KindHTTPStatus: the daemon answered with a non-2xx status.
	KindHTTPStatus
	// KindMalformedBody: the body is not an envelope with a known payload shape.
	KindMalformedBody
	// KindDomain: the envelope decoded but its code is not success.
	KindDomain
)

var kindNames = map[Kind]string{
	KindInvalidBaseAddress: "invalid_base_address",
	KindInvalidRequestPath: "invalid_request_path",
	KindTransport:          "transport",
	KindHTTPStatus:         "http_status",
	KindMalformedBody:      "malformed_body",
	KindDomain:             "domain",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by this package.
type Error struct {
	Kind Kind
	// Op names the failed operation, e.g. "pipeline.create".
	Op string
	// StatusCode is set for KindHTTPStatus.
	StatusCode int
	// Code and Description are set for KindDomain.
	Code        ResponseCode
	Description string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindHTTPStatus:
		msg = fmt.Sprintf("unsuccessful HTTP status %d", e.StatusCode)
	case KindDomain:
		msg = fmt.Sprintf("daemon returned %s (%d)", e.Code, int(e.Code))
		if e.Description != "" {
			msg += ": " + e.Description
		}
	default:
		msg = e.Kind.String()
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Op != "" {
		return "gstd: " + e.Op + ": " + msg
	}
	return "gstd: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request may succeed.
// Only transport and HTTP status failures qualify; a cancelled context
// does not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return !httpclient.IsCanceled(e.Err) && !errors.Is(e.Err, context.Canceled)
	case KindHTTPStatus:
		return true
	default:
		return false
	}
}

// AppError maps the error into the shared application error taxonomy.
func (e *Error) AppError() *apperrors.AppError {
	var out *apperrors.AppError
	switch e.Kind {
	case KindInvalidBaseAddress:
		if cfgErr, ok := apperrors.AsAppError(e.Err); ok {
			out = apperrors.Validation(cfgErr.Message).WithDetails(cfgErr.Details)
		} else {
			out = apperrors.InvalidFormat("base_url", "absolute http(s) URL")
		}
	case KindInvalidRequestPath:
		reason := "cannot compose request URL"
		if e.Err != nil {
			reason = e.Err.Error()
		}
		out = apperrors.InvalidInput("path", reason)
	case KindTransport:
		if httpclient.IsTimeout(e.Err) || httpclient.IsCanceled(e.Err) {
			out = apperrors.Timeout(e.Op)
		} else {
			out = apperrors.ConnectionFailed(addressOf(e.Err))
		}
	case KindHTTPStatus:
		out = apperrors.BadGateway(e.StatusCode)
	case KindMalformedBody:
		out = apperrors.Incompatible(e)
	case KindDomain:
		out = domainAppError(e.Code, e.Description)
	default:
		out = apperrors.Internal(e)
	}
	out.Cause = e
	if e.Op != "" {
		out.WithDetail("operation", e.Op)
	}
	return out
}

func domainAppError(code ResponseCode, description string) *apperrors.AppError {
	if description == "" {
		description = code.Description()
	}
	var out *apperrors.AppError
	switch code {
	case CodeNoPipeline:
		out = apperrors.NotFound("pipeline", "")
	case CodeNoResource:
		out = apperrors.NotFound("resource", "")
	case CodeExistingName, CodeExistingResource:
		out = apperrors.AlreadyExists("resource")
	case CodeStateError, CodeNoUpdate, CodeNoCreate, CodeNoRead:
		out = apperrors.Conflict(description)
	case CodeNullArgument, CodeBadDescription, CodeBadCommand, CodeBadValue,
		CodeEventError, CodeMissingArgument, CodeMissingName:
		out = apperrors.InvalidInput("", description)
	default:
		out = apperrors.ExternalServiceError("gstd", description)
	}
	return out.WithDetail("response_code", int(code)).WithDetail("description", description)
}

// addressOf extracts the target URL from a transport error when the
// standard library recorded one.
func addressOf(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.URL
	}
	return "gstd daemon"
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsDomainCode reports whether err is a domain failure with the given code.
func IsDomainCode(err error, code ResponseCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDomain && e.Code == code
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
