// Package config loads validated settings for long running jobs. A value
// that is missing uses the default; a value that fails to parse or validate
// also uses the default and reports a warning, so a typo in one variable
// never stops the worker.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is one loaded value.
type Result[T any] struct {
	Value T
	// Fallback is true when the environment held an unusable value.
	Fallback bool
	Warning  string
}

// Load reads key, converts it with parse and checks it with validate (which
// may be nil).
func Load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}
	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:    def,
			Fallback: true,
			Warning:  fmt.Sprintf("invalid %s=%q: %v, using default %v", key, raw, err, def),
		}
	}
	return Result[T]{Value: v}
}

func LoadString(key, def string, validate func(string) error) Result[string] {
	return Load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

func LoadInt(key string, def int, validate func(int) error) Result[int] {
	return Load(key, def, strconv.Atoi, validate)
}

func LoadDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(key, def, time.ParseDuration, validate)
}

func LoadBool(key string, def bool) Result[bool] {
	return Load(key, def, strconv.ParseBool, nil)
}
