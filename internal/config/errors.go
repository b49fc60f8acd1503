package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoSeed is returned when the crawl has no seed work.
	ErrNoSeed = errors.New("no seed specified: provide a work URL or set seeds in the config file")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetryCooldown is returned when the retry cooldown is not positive.
	ErrInvalidRetryCooldown = errors.New("invalid retry cooldown: must be positive")

	// ErrInvalidPoliteDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidPoliteDelay = errors.New("invalid polite delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoCacheDir is returned when the cache is enabled without a directory.
	ErrNoCacheDir = errors.New("cache enabled but no cache directory specified")

	// ErrInvalidNodeThreshold is returned for a negative node threshold.
	ErrInvalidNodeThreshold = errors.New("invalid node threshold: must be non-negative")

	// ErrInvalidEdgeThreshold is returned for an edge threshold outside [0, 1].
	ErrInvalidEdgeThreshold = errors.New("invalid edge threshold: must be between 0 and 1")
)
