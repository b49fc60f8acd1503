// Package log provides secure logging on top of the standard slog package.
//
// SecureHandler wraps any slog.Handler and masks credentials before they
// reach the output:
//   - HTTP headers such as Authorization and Cookie
//   - the itch.io session cookie, whether logged by key or as a raw header value
//   - API keys inside itch.io API URLs and passwords inside proxy URLs
//
// Even in verbose mode, sensitive values are masked so that crawl logs can
// be shared when reporting a problem.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("request configured",
//	    "cookie", "itchio=abc123", // logged as ***REDACTED***
//	    "url", "https://chasefox.itch.io/carrot-the-first-seed/comments",
//	)
package log
