package valuation

import (
	"fmt"
	"math"

	"irea.valuation/internal/apperr"
	"irea.valuation/internal/features"
	"irea.valuation/internal/model"
	"irea.valuation/internal/parcels"
	"irea.valuation/internal/utils"
)

// Predictor runs the baseline and residual models and composes the price.
type Predictor struct {
	baseline         model.Model
	residual         model.Model
	strategy         Strategy
	version          string
	assessCandidates []string
	trendFields      []string
}

// NewPredictor builds a Predictor. Empty version, assess candidates or trend
// fields take the model package defaults.
func NewPredictor(baseline, residual model.Model, strategy Strategy, version string, assessCandidates, trendFields []string) *Predictor {
	if version == "" {
		version = model.DefaultVersion
	}
	if len(assessCandidates) == 0 {
		assessCandidates = model.DefaultAssessCandidates
	}
	if len(trendFields) == 0 {
		trendFields = model.DefaultTrendFields
	}
	return &Predictor{
		baseline:         baseline,
		residual:         residual,
		strategy:         strategy,
		version:          version,
		assessCandidates: assessCandidates,
		trendFields:      trendFields,
	}
}

// Ready reports whether both models are loaded.
func (p *Predictor) Ready() bool {
	return p != nil && p.baseline != nil && p.residual != nil
}

// Strategy is the composition strategy in use.
func (p *Predictor) Strategy() Strategy { return p.strategy }

// Predict evaluates both vectors and composes the result for the nearest
// parcel. lat and lng are the request coordinate, used as the snapped
// coordinate when the parcel's own is not finite.
func (p *Predictor) Predict(baseVec, resVec features.Vector, nearest parcels.Match, lat, lng float64) (Result, error) {
	if !p.Ready() {
		return Result{}, fmt.Errorf("predict: %w", apperr.ErrNotReady)
	}

	basePred, err := p.baseline.Predict(baseVec)
	if err != nil {
		return Result{}, fmt.Errorf("baseline model: %w", err)
	}

	rowAssess, hasAssess := p.rowAssess(nearest.Record)
	anchor, source := p.strategy.anchor(basePred, rowAssess, hasAssess)

	residual, err := p.residual.Predict(resVec)
	if err != nil {
		return Result{}, fmt.Errorf("residual model: %w", err)
	}

	final := anchor * math.Exp(residual)
	if math.IsNaN(final) || math.IsInf(final, 0) {
		return Result{}, fmt.Errorf("non-finite price (anchor %g, residual %g)", anchor, residual)
	}

	snappedLat, snappedLng := lat, lng
	if rLat, rLng, ok := nearest.Record.Coordinates(); ok {
		snappedLat, snappedLng = rLat, rLng
	}

	res := Result{
		PredictedPrice: final,
		FinalPrice:     final,
		AssessPrice:    anchor,
		Residual:       residual,
		SnappedLat:     snappedLat,
		SnappedLng:     snappedLng,
		ModelVersion:   p.version,
		Trend:          p.trend(nearest.Record),
		Meta: Meta{
			AssessSource:         source,
			BaselineRawPred:      basePred,
			NearestRowIndex:      nearest.Index,
			NearestD2:            nearest.DistanceSquared,
			NearestDistanceM:     utils.Haversine(lat, lng, snappedLat, snappedLng),
			PID:                  nearest.Record.PID(),
			Strategy:             p.strategy,
			BaselineCategoricals: baseVec.Spec.Categoricals(),
			ResidualCategoricals: resVec.Spec.Categoricals(),
		},
	}
	if hasAssess {
		res.Meta.RowAssess = &rowAssess
	}
	return res, nil
}

// rowAssess returns the first positive assessed value among the candidates.
func (p *Predictor) rowAssess(rec parcels.Record) (float64, bool) {
	for _, col := range p.assessCandidates {
		if v, ok := utils.SafeFloat(rec[col]); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// trend passes through the trend columns the record carries, as numbers when
// they parse and as null when they are NaN or infinite floats. It is nil when
// the record has none of them.
func (p *Predictor) trend(rec parcels.Record) map[string]any {
	var out map[string]any
	for _, key := range p.trendFields {
		v, ok := rec[key]
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		switch f, ok := utils.SafeFloat(v); {
		case ok:
			out[key] = f
		case nonFinite(v):
			// encoding/json cannot represent NaN or Inf.
			out[key] = nil
		default:
			out[key] = v
		}
	}
	return out
}

func nonFinite(v any) bool {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return false
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}
