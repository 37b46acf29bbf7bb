// Package pagination parses page/limit query parameters and builds the
// pagination block returned with list responses.
package pagination

import envconfig "tlwd-backend/pkg/config"

// Config bounds the page size. Pages are 1-based.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig is page 1, 10 per page, at most 100.
func DefaultConfig() Config {
	return Config{DefaultPage: 1, DefaultLimit: 10, MaxLimit: 100}
}

// LoadFromEnv reads PAGINATION_DEFAULT_LIMIT and PAGINATION_MAX_LIMIT.
// A default above the maximum is lowered to it.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	cfg.DefaultLimit = envconfig.GetEnvPositiveInt("PAGINATION_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.MaxLimit = envconfig.GetEnvPositiveInt("PAGINATION_MAX_LIMIT", cfg.MaxLimit)
	cfg.DefaultLimit = min(cfg.DefaultLimit, cfg.MaxLimit)
	return cfg
}
