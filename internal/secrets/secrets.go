// Package secrets reads env files for launch targets and masks their values
// for display.
package secrets

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// ReadEnvFile reads a dotenv file and returns the variables it defines.
// A missing or unreadable file is an error; callers decide whether that
// matters.
func ReadEnvFile(envPath string) (map[string]string, error) {
	f, err := os.Open(envPath)
	if err != nil {
		return nil, fmt.Errorf("opening env file: %w", err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", envPath, err)
	}
	return vars, nil
}

// IsSensitive reports whether the variable name suggests a secret value.
func IsSensitive(name string) bool {
	criticalPatterns := []string{
		"API_KEY", "APIKEY", "SECRET", "TOKEN", "PASSWORD", "PASSWD",
		"PRIVATE_KEY", "AUTH", "CREDENTIAL", "ACCESS_KEY",
	}
	upper := strings.ToUpper(name)
	for _, pattern := range criticalPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// MaskValue masks the middle of a value for display
func MaskValue(value string) string {
	// Don't mask URLs - they're usually not secret
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://", "postgresql://", "redis://"} {
		if strings.HasPrefix(value, scheme) {
			return value
		}
	}

	if len(value) <= 10 {
		return value
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// MaskEnv returns a copy of env for display. Values of sensitive names are
// fully hidden; long values are partially masked.
func MaskEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		switch {
		case IsSensitive(k) && v != "":
			out[k] = strings.Repeat("*", 8)
		default:
			out[k] = MaskValue(v)
		}
	}
	return out
}

// SortedKeys returns the keys of env in lexical order.
func SortedKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
