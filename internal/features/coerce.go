package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coerce maps a raw value to a typed cell for the given kind. It is total.
func Coerce(v any, kind Kind) Cell {
	if kind == Categorical {
		return Cell{Kind: Categorical, Label: CategoricalLabel(v)}
	}
	return Cell{Kind: Numeric, Value: NumericValue(v)}
}

// NumericValue parses v as a float. Text has thousands separators removed;
// anything unparsable, blank or non-finite becomes NaN.
func NumericValue(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case json.Number:
		return parseNumericText(x.String())
	case string:
		return parseNumericText(x)
	case []byte:
		return parseNumericText(string(x))
	default:
		return parseNumericText(fmt.Sprint(x))
	}

	if math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func parseNumericText(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return math.NaN()
	}

	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// CategoricalLabel renders v as a category label. Absent, blank and NaN values
// become UnknownLabel.
func CategoricalLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return UnknownLabel
	case string:
		if strings.TrimSpace(x) == "" {
			return UnknownLabel
		}
		return x
	case []byte:
		return CategoricalLabel(string(x))
	case float64:
		if math.IsNaN(x) {
			return UnknownLabel
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(x)) {
			return UnknownLabel
		}
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
