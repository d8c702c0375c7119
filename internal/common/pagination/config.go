// Package pagination holds the page arithmetic, cursor encoding and overscan
// policy shared by the activity feed engine and its HTTP surface.
package pagination

import (
	"github.com/kelseyhightower/envconfig"
)

// Default engine constants.
const (
	DefaultPageSize          = 5
	DefaultNormalMultiplier  = 5
	DefaultBoostedMultiplier = 10
	DefaultIDBatchLimit      = 10
	DefaultPrefetchDepth     = 2
)

// Config holds pagination configuration settings.
// These values can be loaded from environment variables.
type Config struct {
	PageSize          int    `envconfig:"PAGE_SIZE" default:"5"`
	NormalMultiplier  int    `envconfig:"RAW_MULTIPLIER" default:"5"`
	BoostedMultiplier int    `envconfig:"RAW_MULTIPLIER_BOOSTED" default:"10"`
	IDBatchLimit      int    `envconfig:"ID_BATCH_LIMIT" default:"10"`
	PrefetchDepth     int    `envconfig:"PREFETCH_DEPTH" default:"2"`
	OverscanFile      string `envconfig:"OVERSCAN_FILE"`
}

// DefaultConfig returns the default pagination configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:          DefaultPageSize,
		NormalMultiplier:  DefaultNormalMultiplier,
		BoostedMultiplier: DefaultBoostedMultiplier,
		IDBatchLimit:      DefaultIDBatchLimit,
		PrefetchDepth:     DefaultPrefetchDepth,
	}
}

// LoadFromEnv loads pagination config from environment variables.
// Supported environment variables:
//   - PAGINATION_PAGE_SIZE
//   - PAGINATION_RAW_MULTIPLIER
//   - PAGINATION_RAW_MULTIPLIER_BOOSTED
//   - PAGINATION_ID_BATCH_LIMIT
//   - PAGINATION_PREFETCH_DEPTH
//   - PAGINATION_OVERSCAN_FILE: optional YAML overscan policy
//
// Falls back to DefaultConfig() if the variables cannot be parsed or the
// result does not validate.
func LoadFromEnv() Config {
	var cfg Config
	if err := envconfig.Process("PAGINATION", &cfg); err != nil {
		return DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Policy builds the overscan policy for this config. When OverscanFile is
// set, the file overrides the uniform multipliers per category.
func (c Config) Policy() (OverscanPolicy, error) {
	base := UniformPolicy(c.NormalMultiplier, c.BoostedMultiplier)
	if c.OverscanFile == "" {
		return base, nil
	}
	return LoadOverscanPolicy(c.OverscanFile, base)
}
