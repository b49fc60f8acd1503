package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/crypto/sha3"
)

// DefaultUserAgent identifies the crawler to the remote.
const DefaultUserAgent = "itchy-graphs/1.0 (+https://github.com/mati7337/itchy-graphs)"

// DefaultMaxBodySize bounds the size of an accepted response body.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Cache stores response bodies keyed by request. Entries are never
// invalidated.
type Cache interface {
	// Lookup returns the cached body and true, or false on a miss.
	Lookup(ctx context.Context, key string) ([]byte, bool, error)

	// Store records body for key. requestURL is kept for inspection only.
	Store(ctx context.Context, key, requestURL string, body []byte) error
}

// HTTPGetter fetches documents over HTTP, consulting an optional Cache.
type HTTPGetter struct {
	client      *http.Client
	cache       Cache
	userAgent   string
	maxBodySize int64
}

// GetterOption configures an HTTPGetter.
type GetterOption func(*HTTPGetter)

// WithCache enables the response cache.
func WithCache(cache Cache) GetterOption {
	return func(g *HTTPGetter) {
		g.cache = cache
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) GetterOption {
	return func(g *HTTPGetter) {
		g.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) GetterOption {
	return func(g *HTTPGetter) {
		g.maxBodySize = size
	}
}

// NewHTTPGetter creates an HTTPGetter. A nil client uses http.DefaultClient.
func NewHTTPGetter(client *http.Client, opts ...GetterOption) *HTTPGetter {
	if client == nil {
		client = http.DefaultClient
	}

	g := &HTTPGetter{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Get implements Getter.
func (g *HTTPGetter) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	requestURL, err := RequestURL(rawURL, query)
	if err != nil {
		return nil, err
	}

	key := CacheKey(requestURL)
	if g.cache != nil {
		body, ok, err := g.cache.Lookup(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("cache lookup failed: %w", err)
		}
		if ok {
			return &Response{Body: body, FromCache: true}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // best effort
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: requestURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > g.maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, requestURL, g.maxBodySize)
	}

	if g.cache != nil {
		if err := g.cache.Store(ctx, key, requestURL, body); err != nil {
			return nil, fmt.Errorf("cache store failed: %w", err)
		}
	}

	return &Response{Body: body}, nil
}

// RequestURL merges query into rawURL's existing query string.
func RequestURL(rawURL string, query url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			for _, v := range values {
				merged.Add(key, v)
			}
		}
		u.RawQuery = merged.Encode()
	}

	return u.String(), nil
}

// CacheKey derives the cache key of a request URL (query included).
func CacheKey(requestURL string) string {
	sum := sha3.Sum256([]byte(requestURL))
	return hex.EncodeToString(sum[:])
}
