package reconcile

import (
	"strings"

	"irea.valuation/internal/utils"
)

// RenovationFlag normalizes a boolean-like value to 0 or 1. Numbers are true
// when non-zero. Strings accept 1/true/yes/y/t and 0/false/no/n/f (or empty).
// Anything else reports false and the flag is dropped.
func RenovationFlag(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y", "t":
			return 1, true
		case "0", "false", "no", "n", "f", "":
			return 0, true
		}
		return 0, false
	}

	f, ok := utils.SafeFloat(v)
	if !ok {
		return 0, false
	}
	if f != 0 {
		return 1, true
	}
	return 0, true
}
