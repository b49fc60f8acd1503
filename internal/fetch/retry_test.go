package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
	"time"
)

// TestFixedCooldown tests the default retry policy.
func TestFixedCooldown(t *testing.T) {
	t.Parallel()

	policy := NewFixedCooldown(30 * time.Second)

	tests := []struct {
		kind      ErrorKind
		wantRetry bool
	}{
		{kind: KindTimeout, wantRetry: true},
		{kind: KindConnection, wantRetry: true},
		{kind: KindHTTPStatus, wantRetry: false},
		{kind: KindPermanent, wantRetry: false},
		{kind: KindCancelled, wantRetry: false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			// The attempt number never changes the outcome: retries are unbounded.
			for _, attempt := range []int{1, 2, 100, 100000} {
				d := policy.Decide(tt.kind, attempt)
				if d.Retry != tt.wantRetry {
					t.Fatalf("attempt %d: Retry = %v, want %v", attempt, d.Retry, tt.wantRetry)
				}
				if d.Retry && d.After != 30*time.Second {
					t.Errorf("attempt %d: After = %v", attempt, d.After)
				}
			}
		})
	}

	t.Run("non-positive cooldown uses default", func(t *testing.T) {
		t.Parallel()

		if got := NewFixedCooldown(0).Cooldown; got != DefaultRetryCooldown {
			t.Errorf("Cooldown = %v, want %v", got, DefaultRetryCooldown)
		}
	})
}

// TestClassify tests error classification.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "http status", err: &HTTPError{StatusCode: 503}, want: KindHTTPStatus},
		{name: "wrapped http status", err: fmt.Errorf("page: %w", &HTTPError{StatusCode: 404}), want: KindHTTPStatus},
		{name: "cancelled", err: context.Canceled, want: KindCancelled},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTimeout},
		{name: "net timeout", err: &url.Error{Op: "Get", URL: "x", Err: timeoutError{}}, want: KindTimeout},
		{name: "connection refused", err: &url.Error{Op: "Get", URL: "x", Err: connRefused()}, want: KindConnection},
		{name: "connection reset", err: &net.OpError{Op: "read", Err: syscall.ECONNRESET}, want: KindConnection},
		{name: "dns failure", err: &net.DNSError{Err: "no such host", Name: "x"}, want: KindConnection},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, want: KindConnection},
		{name: "other", err: errors.New("boom"), want: KindPermanent},
		{name: "nil", err: nil, want: KindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestHTTPError tests HTTPError helpers.
func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 404, URL: "https://a.itch.io/b"})
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
	if StatusCode(err) != 404 {
		t.Errorf("StatusCode() = %d", StatusCode(err))
	}
	if IsNotFound(&HTTPError{StatusCode: 500}) {
		t.Error("expected 500 not to be not-found")
	}
	if StatusCode(errors.New("x")) != 0 {
		t.Error("expected 0 for non-HTTP error")
	}
}
