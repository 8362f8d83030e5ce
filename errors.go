package aiagent

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrUsage      = errors.New("usage error")
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrIO         = errors.New("io error")
	ErrNetwork    = errors.New("network error")
	ErrRequest    = errors.New("request error")
)

// maxErrorBody caps how much of a response body is kept for diagnostics
const maxErrorBody = 2048

// RequestError is returned when the server answers with a non-success status
// or with a body we can't extract text from.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error // optional cause
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("request error: status %d", e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// truncate shortens a response body so it can be carried in an error
func truncate(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "... [truncated]"
}

// IsNetwork reports whether err came from dialing, TLS, the connection or the
// deadline, as opposed to a response the server did send
func IsNetwork(err error) bool {
	if errors.Is(err, ErrNetwork) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
