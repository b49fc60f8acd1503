package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// ErrBodyTooLarge is returned when a response body exceeds the configured
// maximum. Oversized bodies are never cached.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPError is returned for responses with a non-2xx status code.
// It is never retried; callers decide whether a status is benign.
type HTTPError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// URL is the requested URL including the query string.
	URL string
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// StatusCode returns the status of an HTTPError in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// ErrorKind classifies a fetch failure for the retry policy.
type ErrorKind int

const (
	// KindPermanent is any failure that retrying will not fix.
	KindPermanent ErrorKind = iota

	// KindTimeout is a connect or read timeout.
	KindTimeout

	// KindConnection is a refused, reset or otherwise broken connection.
	KindConnection

	// KindHTTPStatus is a response with a non-2xx status.
	KindHTTPStatus

	// KindCancelled means the caller's context was cancelled.
	KindCancelled
)

// String returns a short name of the kind, used in logs and metrics labels.
func (k ErrorKind) String() string {
	switch k {
	case KindPermanent:
		return "permanent"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindHTTPStatus:
		return "http_status"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Transient reports whether the kind is a transient network error.
func (k ErrorKind) Transient() bool {
	return k == KindTimeout || k == KindConnection
}

// Classify maps an error returned by a Getter to its ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindPermanent
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTPStatus
	}

	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	// Per-request deadlines surface either as DeadlineExceeded or as a
	// net.Error with Timeout() set.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return KindConnection
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	return KindPermanent
}
