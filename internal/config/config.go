package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/mati7337/itchy-graphs/internal/fetch"
	"github.com/mati7337/itchy-graphs/internal/graph"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "itchy"

	// DefaultSeed is the work the crawl starts from when none is given.
	DefaultSeed = "https://chasefox.itch.io/carrot-the-first-seed"

	// DefaultMaxRounds is the number of crawl rounds. Zero or less means
	// the crawl runs until both frontiers are empty.
	DefaultMaxRounds = 3

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultOutputDir receives the works/ and authors/ JSON files.
	DefaultOutputDir = "output"
)

// Config holds all configuration options for itchy.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed through the application explicitly.
type Config struct {
	// Seeds are the works the crawl starts from.
	Seeds []string

	// MaxRounds limits the number of crawl rounds; <= 0 is unlimited.
	MaxRounds int

	// OutputDir is where crawl results are written.
	OutputDir string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RetryCooldown is the fixed wait before retrying a transient failure.
	RetryCooldown time.Duration

	// PoliteDelay is the wait after every response that was not cached.
	PoliteDelay time.Duration

	// ProxyAddress optionally routes requests through a SOCKS5 proxy
	// ("host:port").
	ProxyAddress string

	// UserAgent is sent with every request.
	UserAgent string

	// Cookie is sent with every request when set, for example an itchio
	// session cookie.
	Cookie string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// MaxBodySize bounds how many bytes of a response are read.
	MaxBodySize int64

	// CacheEnabled turns on the SQLite response cache.
	CacheEnabled bool

	// CacheDir holds the response cache database.
	CacheDir string

	// SaveHistory records every crawl run in the history database.
	SaveHistory bool

	// DataDir holds the crawl history database.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLogs switches log output to JSON.
	JSONLogs bool

	// JSONReport and MarkdownReport select the summary format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the summary to a file instead of stdout.
	ReportFile string

	// MetricsAddr serves Prometheus metrics on this address during the
	// crawl when set.
	MetricsAddr string

	// ConfigFilePath is the explicit config file, if any.
	ConfigFilePath string

	// Graph holds the similarity graph parameters.
	Graph GraphConfig
}

// GraphConfig holds the parameters of the similarity graph.
type GraphConfig struct {
	NodeThreshold int
	EdgeThreshold float64
	Method        string
	Concurrency   int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	graphDefaults := graph.DefaultOptions()

	return &Config{
		Seeds:         []string{DefaultSeed},
		MaxRounds:     DefaultMaxRounds,
		OutputDir:     DefaultOutputDir,
		Timeout:       DefaultTimeout,
		RetryCooldown: fetch.DefaultRetryCooldown,
		PoliteDelay:   fetch.DefaultPoliteDelay,
		UserAgent:     fetch.DefaultUserAgent,
		MaxBodySize:   fetch.DefaultMaxBodySize,
		CacheEnabled:  true,
		CacheDir:      XDGCacheDir(),
		SaveHistory:   true,
		DataDir:       XDGDataDir(),
		Graph: GraphConfig{
			NodeThreshold: graphDefaults.NodeThreshold,
			EdgeThreshold: graphDefaults.EdgeThreshold,
			Method:        graphDefaults.Method.String(),
			Concurrency:   graphDefaults.Concurrency,
		},
	}
}

// GraphOptions converts the graph settings into builder options.
func (c *Config) GraphOptions() (graph.Options, error) {
	method, err := graph.ParseMethod(c.Graph.Method)
	if err != nil {
		return graph.Options{}, err
	}

	opts := graph.DefaultOptions()
	opts.NodeThreshold = c.Graph.NodeThreshold
	opts.EdgeThreshold = c.Graph.EdgeThreshold
	opts.Method = method
	opts.Concurrency = c.Graph.Concurrency
	return opts, nil
}

// XDGDataDir returns the XDG data directory for itchy.
// On Linux: ~/.local/share/itchy
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for itchy.
// On Linux: ~/.config/itchy
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for itchy.
// On Linux: ~/.cache/itchy
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RetryCooldown <= 0 {
		return ErrInvalidRetryCooldown
	}

	if c.PoliteDelay < 0 {
		return ErrInvalidPoliteDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CacheEnabled && c.CacheDir == "" {
		return ErrNoCacheDir
	}

	return c.ValidateGraph()
}

// ValidateGraph checks only the graph settings, for commands that do not
// crawl.
func (c *Config) ValidateGraph() error {
	if c.Graph.NodeThreshold < 0 {
		return ErrInvalidNodeThreshold
	}

	if c.Graph.EdgeThreshold < 0 || c.Graph.EdgeThreshold > 1 {
		return ErrInvalidEdgeThreshold
	}

	if _, err := graph.ParseMethod(c.Graph.Method); err != nil {
		return err
	}

	return nil
}
