package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Kind classifies a failed fetch against the remote observation API
type Kind string

const (
	KindHTTPStatus Kind = "http_status"
	KindConnection Kind = "connection"
	KindTimeout    Kind = "timeout"
	KindOther      Kind = "other"
)

// Kinds lists every failure kind in a stable order
var Kinds = []Kind{KindHTTPStatus, KindConnection, KindTimeout, KindOther}

// Failure is the tagged failure half of a fetch result.
// StatusCode is only set for KindHTTPStatus.
type Failure struct {
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

func (f *Failure) Error() string {
	if f.Kind == KindHTTPStatus {
		return fmt.Sprintf("%s failure (status %d): %s", f.Kind, f.StatusCode, f.Detail)
	}
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewStatusFailure builds a failure for a non-2xx HTTP response
func NewStatusFailure(statusCode int, detail string) *Failure {
	return &Failure{
		Kind:       KindHTTPStatus,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// Classify maps a transport-level error to a Failure.
// A *Failure passes through unchanged.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	kind := KindOther
	switch {
	case isTimeout(err):
		kind = KindTimeout
	case IsConnectionFailure(err):
		kind = KindConnection
	}

	return &Failure{
		Kind:   kind,
		Detail: err.Error(),
		Err:    err,
	}
}

// IsConnectionFailure reports whether err happened while establishing the
// connection (DNS lookup, dial, refused dial). Errors on an established
// connection and timeouts are never connection failures.
func IsConnectionFailure(err error) bool {
	if err == nil || isTimeout(err) {
		return false
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind == KindConnection
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// a reset or refusal after the request was written is not retried
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}

	return errors.Is(err, syscall.ECONNREFUSED)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
