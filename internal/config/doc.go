// Package config provides configuration structures and utilities for itchy.
// It defines the crawl settings, network options, cache and history
// locations, report preferences and graph build parameters.
package config
