package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts the five field form ("*/15 * * * *").
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("cron schedule is empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone requires an IANA name loadable from the zone database.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return errors.New("timezone is empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return nil
}

// DurationBetween returns a validator for [min, max].
func DurationBetween(min, max time.Duration) func(time.Duration) error {
	return func(d time.Duration) error {
		if d < min || d > max {
			return fmt.Errorf("%v is outside [%v, %v]", d, min, max)
		}
		return nil
	}
}

// IntBetween returns a validator for [min, max].
func IntBetween(min, max int) func(int) error {
	return func(v int) error {
		if v < min || v > max {
			return fmt.Errorf("%d is outside [%d, %d]", v, min, max)
		}
		return nil
	}
}
