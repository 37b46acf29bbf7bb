// Package config reads typed values from the process environment.
//
// Every getter falls back to its default when the variable is unset. Malformed
// values also fall back, with a slog warning naming the variable, so a typo in
// a deployment never prevents the service from starting.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var errNotPositive = errors.New("must be positive")

// lookup parses key with parse. The boolean is false when the variable is
// unset or invalid.
func lookup[T any](key string, def T, parse func(string) (T, error)) (T, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, false
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("invalid value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", fmt.Sprint(def)),
			slog.String("error", err.Error()))
		return def, false
	}
	return v, true
}

// GetEnvString returns the variable or def when unset or empty.
//
//	frontend := GetEnvString("FRONTEND_URL", "http://localhost:5173")
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	v, _ := lookup(key, def, strconv.Atoi)
	return v
}

// GetEnvPositiveInt also rejects zero and negative values.
func GetEnvPositiveInt(key string, def int) int {
	v, _ := lookup(key, def, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err == nil && n <= 0 {
			err = errNotPositive
		}
		return n, err
	})
	return v
}

// GetEnvFloat parses a decimal float.
//
//	rps := GetEnvFloat("MAIL_RATE_PER_SECOND", 2)
func GetEnvFloat(key string, def float64) float64 {
	v, _ := lookup(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	return v
}

// GetEnvBool follows strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	v, _ := lookup(key, def, strconv.ParseBool)
	return v
}

// GetEnvDuration takes time.ParseDuration syntax ("30m", "72h").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	v, _ := lookup(key, def, time.ParseDuration)
	return v
}

// GetEnvStringList splits a comma-separated variable and drops blank items.
//
//	// CORS_ALLOWED_ORIGINS="https://tlwd.org, https://admin.tlwd.org"
//	origins := GetEnvStringList("CORS_ALLOWED_ORIGINS", nil)
func GetEnvStringList(key string, def []string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
