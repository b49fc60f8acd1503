package config

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".itchy"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .itchy configuration file.
// Zero values leave the corresponding setting untouched.
type File struct {
	// Seeds replace the default seed works.
	Seeds []string `yaml:"seeds,omitempty"`

	// MaxRounds overrides the round limit. Use a negative value for an
	// unlimited crawl; zero keeps the default.
	MaxRounds int `yaml:"maxRounds,omitempty"`

	OutputDir string `yaml:"outputDir,omitempty"`

	Timeout       time.Duration `yaml:"timeout,omitempty"`
	RetryCooldown time.Duration `yaml:"retryCooldown,omitempty"`

	// PoliteDelay is a pointer so that an explicit 0s disables the delay.
	PoliteDelay *time.Duration `yaml:"politeDelay,omitempty"`

	Proxy     string `yaml:"proxy,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is sent with every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are merged over the built-in headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cache toggles the response cache; CacheDir moves it.
	Cache    *bool  `yaml:"cache,omitempty"`
	CacheDir string `yaml:"cacheDir,omitempty"`

	// History toggles the crawl history; DataDir moves it.
	History *bool  `yaml:"history,omitempty"`
	DataDir string `yaml:"dataDir,omitempty"`

	MetricsAddr string `yaml:"metricsAddr,omitempty"`

	Graph GraphFile `yaml:"graph,omitempty"`
}

// GraphFile is the graph section of the configuration file.
type GraphFile struct {
	NodeThreshold int     `yaml:"nodeThreshold,omitempty"`
	EdgeThreshold float64 `yaml:"edgeThreshold,omitempty"`
	Method        string  `yaml:"method,omitempty"`
	Concurrency   int     `yaml:"concurrency,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies every setting present in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if len(cf.Seeds) > 0 {
		cfg.Seeds = append([]string(nil), cf.Seeds...)
	}
	if cf.MaxRounds != 0 {
		cfg.MaxRounds = cf.MaxRounds
	}
	if cf.OutputDir != "" {
		cfg.OutputDir = cf.OutputDir
	}
	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.RetryCooldown != 0 {
		cfg.RetryCooldown = cf.RetryCooldown
	}
	if cf.PoliteDelay != nil {
		cfg.PoliteDelay = *cf.PoliteDelay
	}
	if cf.Proxy != "" {
		cfg.ProxyAddress = cf.Proxy
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.Cookie != "" {
		cfg.Cookie = cf.Cookie
	}
	if len(cf.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(cf.Headers))
		}
		maps.Copy(cfg.Headers, cf.Headers)
	}
	if cf.Cache != nil {
		cfg.CacheEnabled = *cf.Cache
	}
	if cf.CacheDir != "" {
		cfg.CacheDir = cf.CacheDir
	}
	if cf.History != nil {
		cfg.SaveHistory = *cf.History
	}
	if cf.DataDir != "" {
		cfg.DataDir = cf.DataDir
	}
	if cf.MetricsAddr != "" {
		cfg.MetricsAddr = cf.MetricsAddr
	}

	if cf.Graph.NodeThreshold != 0 {
		cfg.Graph.NodeThreshold = cf.Graph.NodeThreshold
	}
	if cf.Graph.EdgeThreshold != 0 {
		cfg.Graph.EdgeThreshold = cf.Graph.EdgeThreshold
	}
	if cf.Graph.Method != "" {
		cfg.Graph.Method = cf.Graph.Method
	}
	if cf.Graph.Concurrency != 0 {
		cfg.Graph.Concurrency = cf.Graph.Concurrency
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .itchy in the current directory
// 3. Look for .itchy in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
