// Package fetch retrieves remote documents for the crawler.
//
// The package is split into three parts:
//   - Fetcher: the retry/politeness discipline. Transient network errors are
//     retried forever after a fixed cooldown, HTTP status errors are returned
//     as *HTTPError, and responses that did not come from the cache are
//     followed by a politeness delay.
//   - RetryPolicy: a pure decision function (error kind, attempt) -> retry
//     after d / fail, so the policy is testable without real time.
//   - HTTPGetter: the network capability, a net/http client with optional
//     SOCKS5 proxy, injected headers and an optional response cache.
//
// The crawler depends on Fetcher only; tests swap the Getter and Sleeper
// capabilities for fakes.
package fetch
