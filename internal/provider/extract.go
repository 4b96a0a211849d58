package provider

import (
	"math"
	"strconv"
	"strings"
)

// ExtractValue normalizes a stat value from various upstream formats.
//
// The GraphQL API returns numbers, nulls, and occasionally numeric strings.
// The standings document returns cell text like ".634" or "50". Empty strings
// and nulls are not extractable.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ExtractValue(f)
		}
		return 0, false
	case map[string]interface{}:
		for _, key := range []string{"total", "value"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractInt is ExtractValue truncated to an int.
func ExtractInt(val interface{}) (int, bool) {
	f, ok := ExtractValue(val)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// CleanName strips the Hall-of-Fame asterisk and surrounding space that the
// upstream sources append to player names.
func CleanName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "*", ""))
}
