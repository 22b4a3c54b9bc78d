// Package env reads solo settings from the process environment.
package env

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Prefix is the common prefix of every environment variable solo reads.
const Prefix = "SOLO_"

// ErrInvalidBool is returned when a string cannot be parsed as a boolean.
var ErrInvalidBool = errors.New("invalid boolean value")

// ParseBool interprets a string as a boolean after trimming and lowercasing.
//
// Accepted values:
//   - "true", "yes", "1"  -> true
//   - "false", "no", "0"  -> false
//   - "" (empty)          -> false, nil error
//   - any other non-empty -> false, ErrInvalidBool
func ParseBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, value)
	}
}

// LookupBool reads envVar as a boolean. The second result is false when the
// variable is unset or empty, in which case the caller keeps its own value.
func LookupBool(envVar string) (bool, bool, error) {
	v, ok := os.LookupEnv(envVar)
	if !ok || strings.TrimSpace(v) == "" {
		return false, false, nil
	}

	b, err := ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", envVar, err)
	}

	return b, true, nil
}

// Prefixed returns the KEY=value assignments from assignments whose key
// starts with Prefix, sorted by key.
func Prefixed(assignments []string) []string {
	const keyValueParts = 2
	matched := lo.Filter(assignments, func(item string, _ int) bool {
		parts := strings.SplitN(item, "=", keyValueParts)
		return len(parts) == keyValueParts && strings.HasPrefix(parts[0], Prefix)
	})
	sort.Strings(matched)

	return matched
}
