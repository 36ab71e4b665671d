package reolink

import (
	"fmt"

	"github.com/juju/errors"
)

// ApiError reports a per-command failure inside an otherwise valid response
// batch, like an "ability error" for a command the firmware does not support.
// Decoding of the remaining batch entries continues past it.
type ApiError struct {
	Cmd    string
	Code   int
	Detail string
}

func (e *ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("camera rejected %s: %s (code %d)", e.Cmd, e.Detail, e.Code)
	}
	return fmt.Sprintf("camera rejected %s (code %d)", e.Cmd, e.Code)
}

// IsApiError reports whether err is a per-command application error.
func IsApiError(err error) bool {
	_, ok := errors.Cause(err).(*ApiError)
	return ok
}

// InvalidContentTypeError reports a response whose Content-Type does not
// match the expected one, e.g. an HTML error page where a JPEG snapshot was
// requested. It indicates a request-shape problem, not a transient condition.
type InvalidContentTypeError struct {
	Expected string
	Actual   string
}

func (e *InvalidContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type %q, expected %q", e.Actual, e.Expected)
}

// IsInvalidContentType reports whether err is an InvalidContentTypeError.
func IsInvalidContentType(err error) bool {
	_, ok := errors.Cause(err).(*InvalidContentTypeError)
	return ok
}

// DecodeError reports a response body that could not be decoded as the
// expected JSON command array. The session token is cleared when it occurs,
// since an unparseable body may mean the token went stale.
type DecodeError struct {
	Host string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("host %s: undecodable protocol response: %v", e.Host, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is a protocol decode error.
func IsDecodeError(err error) bool {
	_, ok := errors.Cause(err).(*DecodeError)
	return ok
}
