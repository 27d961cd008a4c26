package valuation

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how the baseline output becomes the price anchor.
type Strategy uint8

const (
	// LogRaw anchors on the parcel's assessed value when it has one and
	// otherwise reads the baseline output as either log price or price.
	LogRaw Strategy = iota
	// Log1p always reads the baseline output as log1p price.
	Log1p
)

// ParseStrategy accepts "log-raw" (or empty) and "log1p".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "log-raw", "lograw":
		return LogRaw, nil
	case "log1p":
		return Log1p, nil
	}
	return LogRaw, fmt.Errorf("unknown composition strategy %q", s)
}

func (s Strategy) String() string {
	if s == Log1p {
		return "log1p"
	}
	return "log-raw"
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Provenance records where the price anchor came from.
type Provenance string

const (
	FromTable    Provenance = "table"
	FromBaseline Provenance = "derived-from-baseline"
)

// logPriceCeiling is the largest baseline output still read as a log price
// when no prior is known.
const logPriceCeiling = 1000

// BaselineToPrice converts a baseline output of uncertain scale to a price.
// With a positive prior it returns whichever of exp(pred) and pred is closer
// to the prior. Without one it applies exp when pred is below 1000.
func BaselineToPrice(pred, prior float64) float64 {
	if prior > 0 && !math.IsInf(prior, 0) {
		asLog := math.Exp(pred)
		if math.Abs(asLog-prior) < math.Abs(pred-prior) {
			return asLog
		}
		return pred
	}
	if pred < logPriceCeiling {
		return math.Exp(pred)
	}
	return pred
}

// anchor picks the price the residual correction applies to.
func (s Strategy) anchor(basePred float64, rowAssess float64, hasAssess bool) (float64, Provenance) {
	switch s {
	case Log1p:
		return math.Expm1(basePred), FromBaseline
	default:
		if hasAssess {
			return rowAssess, FromTable
		}
		return BaselineToPrice(basePred, math.NaN()), FromBaseline
	}
}
