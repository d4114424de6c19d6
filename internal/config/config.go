// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and BURSTCOV_* env vars.
// - Errors returned by Load wrap this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ReferenceDBPath is the reference table file. When ReferenceDBURL is also
	// set it acts as the local cache for the remote copy.
	ReferenceDBPath string `koanf:"reference_db_path"`

	// ReferenceDBURL optionally points at a remote copy of the reference table.
	ReferenceDBURL string `koanf:"reference_db_url"`

	// ReferenceDBCachePath overrides where the remote copy is cached. Empty
	// means ReferenceDBPath.
	ReferenceDBCachePath string `koanf:"reference_db_cache_path"`

	// FetchTimeoutMS bounds the remote reference fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// TargetCoveragePercent is the Target tier threshold (0-100).
	TargetCoveragePercent int `koanf:"target_coverage_percent"`

	// FilterNonOcean drops pure-ocean tile partitions from the reference table.
	FilterNonOcean bool `koanf:"filter_non_ocean"`

	// OrbitWorkers bounds the coarse (per-orbit) pool.
	OrbitWorkers int `koanf:"orbit_workers"`

	// WindowWorkers bounds the fine (per-window, per-partition-chunk) pool.
	WindowWorkers int `koanf:"window_workers"`

	// PartitionsPerTask sets how many tile partitions one fine task matches.
	PartitionsPerTask int `koanf:"partitions_per_task"`

	// MaxRequestProductIDs caps product ids accepted in one HTTP request.
	MaxRequestProductIDs int `koanf:"max_request_product_ids"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		ReferenceDBPath:       "mgrs_burst_db.yaml",
		FetchTimeoutMS:        30_000,
		TargetCoveragePercent: 100,
		FilterNonOcean:        true,
		OrbitWorkers:          runtime.NumCPU(),
		WindowWorkers:         runtime.NumCPU() * 4,
		PartitionsPerTask:     64,
		MaxRequestProductIDs:  100_000,
	}
}
