// Package worker holds the configuration, metrics and probe server of the
// donation reconciliation worker.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tlwd-backend/internal/pkg/config"
)

// Config controls the stale donation sweep.
type Config struct {
	// CronSchedule is a five field expression evaluated in Timezone.
	CronSchedule string
	Timezone     string
	// StaleAfter is how long a donation stays Pending before the sweep asks
	// the gateway about it. Older than MaxAge it is left as abandoned.
	StaleAfter time.Duration
	MaxAge     time.Duration
	BatchSize  int
	// JobTimeout bounds one sweep.
	JobTimeout time.Duration
	HealthPort int
}

func DefaultConfig() Config {
	return Config{
		CronSchedule: "*/15 * * * *",
		Timezone:     "Africa/Lagos",
		StaleAfter:   30 * time.Minute,
		MaxAge:       72 * time.Hour,
		BatchSize:    50,
		JobTimeout:   10 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.StaleAfter <= 0 {
		errs = append(errs, errors.New("stale after: must be positive"))
	}
	if c.MaxAge <= c.StaleAfter {
		errs = append(errs, errors.New("max age: must exceed stale after"))
	}
	if err := config.IntBetween(1, 500)(c.BatchSize); err != nil {
		errs = append(errs, fmt.Errorf("batch size: %w", err))
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, errors.New("job timeout: must be positive"))
	}
	if err := config.IntBetween(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the schedule's time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv reads the RECONCILE_* variables and WORKER_HEALTH_PORT.
// Unusable values fall back to their default with a warning; the result
// always validates. metrics may be nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.Metrics) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	var fallbacks []string
	note := func(field string, fallback bool, warning string) {
		if !fallback {
			return
		}
		fallbacks = append(fallbacks, field)
		logger.Warn("configuration fallback applied", slog.String("field", field), slog.String("warning", warning))
	}

	cfg := def
	s := config.LoadString("RECONCILE_CRON", def.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = s.Value
	note("cron_schedule", s.Fallback, s.Warning)

	s = config.LoadString("RECONCILE_TIMEZONE", def.Timezone, config.ValidateTimezone)
	cfg.Timezone = s.Value
	note("timezone", s.Fallback, s.Warning)

	d := config.LoadDuration("RECONCILE_STALE_AFTER", def.StaleAfter, config.DurationBetween(time.Minute, 24*time.Hour))
	cfg.StaleAfter = d.Value
	note("stale_after", d.Fallback, d.Warning)

	d = config.LoadDuration("RECONCILE_MAX_AGE", def.MaxAge, config.DurationBetween(time.Hour, 30*24*time.Hour))
	cfg.MaxAge = d.Value
	note("max_age", d.Fallback, d.Warning)

	n := config.LoadInt("RECONCILE_BATCH_SIZE", def.BatchSize, config.IntBetween(1, 500))
	cfg.BatchSize = n.Value
	note("batch_size", n.Fallback, n.Warning)

	d = config.LoadDuration("RECONCILE_TIMEOUT", def.JobTimeout, config.DurationBetween(time.Minute, time.Hour))
	cfg.JobTimeout = d.Value
	note("job_timeout", d.Fallback, d.Warning)

	n = config.LoadInt("WORKER_HEALTH_PORT", def.HealthPort, config.IntBetween(1024, 65535))
	cfg.HealthPort = n.Value
	note("health_port", n.Fallback, n.Warning)

	// 個別には妥当でも組み合わせが矛盾する場合
	if cfg.MaxAge <= cfg.StaleAfter {
		note("max_age", true, fmt.Sprintf("RECONCILE_MAX_AGE %v must exceed RECONCILE_STALE_AFTER %v", cfg.MaxAge, cfg.StaleAfter))
		cfg.StaleAfter, cfg.MaxAge = def.StaleAfter, def.MaxAge
	}

	if metrics != nil {
		metrics.Loaded(fallbacks)
	}
	return cfg
}
