// Package reconcile merges user-supplied property attributes with the nearest
// parcel's known attributes.
package reconcile

import (
	"maps"
	"math"
	"time"

	"irea.valuation/internal/features"
	"irea.valuation/internal/utils"
)

// Sale timing attribute names.
const (
	SaleYear  = "sale_year"
	SaleMonth = "sale_month"
)

// DefaultSaleYear is the reference year used when a request carries no sale year.
const DefaultSaleYear = 2025

// forbidden holds the training target and fields that would leak it.
var forbidden = map[string]struct{}{
	"TOTAL_VALUE_2025": {},
	"consideration":    {},
	"y_residual":       {},
}

// IsForbidden reports whether name may never reach a model.
func IsForbidden(name string) bool {
	_, ok := forbidden[name]
	return ok
}

// AllowedKeys returns the union of the feature names of specs, in first-seen
// order, without the forbidden fields.
func AllowedKeys(specs ...features.Spec) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, spec := range specs {
		for _, name := range spec.Names() {
			if IsForbidden(name) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// SaleDefaults are the sale timing values used when a request omits them.
type SaleDefaults struct {
	Year  int
	Month int
}

// DefaultsAt returns the sale defaults for an inference running at now: the
// given reference year and now's calendar month.
func DefaultsAt(year int, now time.Time) SaleDefaults {
	if year <= 0 {
		year = DefaultSaleYear
	}
	return SaleDefaults{Year: year, Month: int(now.Month())}
}

// Result is the reconciled attribute set for one request.
type Result struct {
	Attributes map[string]any
	// SaleYear and SaleMonth are the sale timing values the models see.
	SaleYear  int
	SaleMonth int
}

// Reconcile normalizes request aliases, then fills each allowed key the
// request leaves blank from the nearest record. Request keys outside the
// allowed set pass through untouched. Forbidden fields are always removed and
// absent sale timing is filled from defaults.
func Reconcile(request map[string]any, nearest map[string]any, allowed []string, defaults SaleDefaults) Result {
	out := NormalizeAliases(request)

	for _, key := range allowed {
		if IsForbidden(key) || key == SaleYear || key == SaleMonth {
			continue
		}
		if !utils.IsBlank(out[key]) {
			continue
		}
		if v, ok := nearest[key]; ok && v != nil {
			out[key] = v
		}
	}

	res := Result{Attributes: out}
	res.SaleYear = fillSale(out, SaleYear, defaults.Year)
	res.SaleMonth = fillSale(out, SaleMonth, defaults.Month)

	for key := range forbidden {
		delete(out, key)
	}
	return res
}

// fillSale reads a sale timing attribute as a whole number. Values that are
// missing, unparseable or too large for an int32 are replaced by fallback.
func fillSale(attrs map[string]any, key string, fallback int) int {
	if f := features.NumericValue(attrs[key]); !math.IsNaN(f) && math.Abs(f) <= math.MaxInt32 {
		return int(f)
	}
	attrs[key] = fallback
	return fallback
}

// aliases maps user-facing names to the canonical attributes they fill.
var aliases = []struct {
	from string
	to   []string
}{
	{"latitude", []string{"LATITUDE"}},
	{"longitude", []string{"LONGITUDE"}},
	{"areaSqft", []string{"LIVING_AREA", "GROSS_AREA"}},
	{"lotSqft", []string{"LAND_SF"}},
	{"bedrooms", []string{"BED_RMS"}},
	{"builtYear", []string{"YR_BUILT"}},
	{"parkingSpaces", []string{"NUM_PARKING"}},
	{"parking", []string{"NUM_PARKING"}},
}

// NormalizeAliases returns a copy of attrs with user-facing short names
// translated to canonical attribute names. A canonical value already present
// is never overwritten.
func NormalizeAliases(attrs map[string]any) map[string]any {
	out := maps.Clone(attrs)
	if out == nil {
		out = make(map[string]any)
	}

	for _, a := range aliases {
		v := out[a.from]
		if utils.IsBlank(v) {
			continue
		}
		if a.from == "parking" && math.IsNaN(features.NumericValue(v)) {
			continue
		}
		for _, to := range a.to {
			if utils.IsBlank(out[to]) {
				out[to] = v
			}
		}
	}

	if b := features.NumericValue(out["bathrooms"]); !math.IsNaN(b) {
		full, half := SplitBathrooms(b)
		if utils.IsBlank(out["FULL_BTH"]) {
			out["FULL_BTH"] = full
		}
		if utils.IsBlank(out["HLF_BTH"]) {
			out["HLF_BTH"] = half
		}
	}

	if _, ok := out["renovated"]; ok {
		flag, ok := RenovationFlag(out["renovated"])
		if ok {
			out["renovated"] = flag
			if utils.IsBlank(out["HAS_REMODEL"]) {
				out["HAS_REMODEL"] = flag
			}
		} else {
			delete(out, "renovated")
		}
	}

	return out
}

// SplitBathrooms decomposes a fractional bathroom count into whole baths and
// a half-bath flag. The flag is set when the fractional part is at least 0.49.
func SplitBathrooms(b float64) (full, half int) {
	full = int(math.Floor(b + 1e-9))
	if b-float64(full) >= 0.49 {
		half = 1
	}
	return full, half
}
