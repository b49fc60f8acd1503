package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// DefaultPoliteDelay is the wait after every response not served from cache.
const DefaultPoliteDelay = 1 * time.Second

// Response is a successful (2xx) reply from a Getter.
type Response struct {
	// Body is the raw response body.
	Body []byte

	// FromCache is true when the body came from the response cache and no
	// request reached the remote.
	FromCache bool
}

// Getter is the fetch capability used by Fetcher.
// Get returns *HTTPError for non-2xx responses.
type Getter interface {
	Get(ctx context.Context, rawURL string, query url.Values) (*Response, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ContextSleeper sleeps on a timer and returns ctx.Err() on cancellation.
var ContextSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
})

// Recorder receives fetch events, typically to update metrics.
type Recorder interface {
	ObserveFetch(fromCache bool)
	ObserveRetry(kind string)
	ObserveHTTPError(status int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(bool)    {}
func (nopRecorder) ObserveRetry(string)  {}
func (nopRecorder) ObserveHTTPError(int) {}

// Fetcher issues GET requests with the retry and politeness discipline.
// A Fetcher is meant to be used by one goroutine at a time; the crawl keeps
// at most one request outstanding.
type Fetcher struct {
	getter      Getter
	policy      RetryPolicy
	sleeper     Sleeper
	politeDelay time.Duration
	logger      *slog.Logger
	recorder    Recorder
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithSleeper replaces the sleeper used for cooldowns and politeness delays.
func WithSleeper(sleeper Sleeper) Option {
	return func(f *Fetcher) {
		f.sleeper = sleeper
	}
}

// WithPoliteDelay sets the delay after responses not served from cache.
// Zero disables the delay.
func WithPoliteDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.politeDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithRecorder sets the event recorder.
func WithRecorder(recorder Recorder) Option {
	return func(f *Fetcher) {
		f.recorder = recorder
	}
}

// NewFetcher creates a Fetcher around getter.
// Defaults: FixedCooldown(60s), ContextSleeper, 1s politeness delay.
func NewFetcher(getter Getter, opts ...Option) *Fetcher {
	f := &Fetcher{
		getter:      getter,
		policy:      NewFixedCooldown(DefaultRetryCooldown),
		sleeper:     ContextSleeper,
		politeDelay: DefaultPoliteDelay,
		recorder:    nopRecorder{},
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch returns the body of rawURL (with query) decoded as UTF-8 text.
//
// Transient network errors are logged and retried according to the policy,
// with no upper bound on attempts for the default policy; a persistent
// outage stalls the crawl instead of abandoning it. Cancelling ctx is the
// only way to interrupt the wait.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, query url.Values) (string, error) {
	var resp *Response

	for attempt := 1; ; attempt++ {
		var err error
		resp, err = f.getter.Get(ctx, rawURL, query)
		if err == nil {
			break
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		kind := Classify(err)
		if kind == KindHTTPStatus {
			f.recorder.ObserveHTTPError(StatusCode(err))
		}

		decision := f.policy.Decide(kind, attempt)
		if !decision.Retry {
			return "", err
		}

		f.recorder.ObserveRetry(kind.String())
		f.logger.Warn("transient fetch error, retrying",
			"url", rawURL,
			"kind", kind.String(),
			"attempt", attempt,
			"retry_in", decision.After,
			"error", err,
		)

		if err := f.sleeper.Sleep(ctx, decision.After); err != nil {
			return "", err
		}
	}

	f.recorder.ObserveFetch(resp.FromCache)

	if !resp.FromCache {
		f.logger.Debug("fetched from network", "url", rawURL, "query", query.Encode(), "bytes", len(resp.Body))
		if f.politeDelay > 0 {
			if err := f.sleeper.Sleep(ctx, f.politeDelay); err != nil {
				return "", err
			}
		}
	} else {
		f.logger.Debug("served from cache", "url", rawURL, "query", query.Encode())
	}

	return strings.ToValidUTF8(string(resp.Body), "\uFFFD"), nil
}
