package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv builds a Config from environment variables sharing a prefix.
// The prefix (plus a trailing underscore) is stripped and the remainder
// lowercased to form the key: with prefix "APP", APP_MAX_RETRIES=3 becomes
// key "max_retries".
//
// Values are coerced eagerly so the typed accessors work as they do for
// file-loaded configs: "true"/"false" become bool, integral strings become
// int, other numeric strings become float64, everything else stays a string.
func FromEnv(prefix string) Config {
	m := make(map[string]any)
	p := prefix + "_"
	for _, entry := range os.Environ() {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, p) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, p))
		if key == "" {
			continue
		}
		m[key] = coerceEnvValue(raw)
	}
	return New(m)
}

// coerceEnvValue converts an environment string to its most specific type.
func coerceEnvValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
