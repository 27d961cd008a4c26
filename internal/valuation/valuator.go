package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"irea.valuation/internal/apperr"
	"irea.valuation/internal/features"
	"irea.valuation/internal/geofence"
	"irea.valuation/internal/logging"
	"irea.valuation/internal/model"
	"irea.valuation/internal/parcels"
	"irea.valuation/internal/reconcile"
)

// Config is everything a Valuator is built from.
type Config struct {
	Index    parcels.Index
	Baseline model.Model
	Residual model.Model
	Strategy Strategy

	Version          string
	AssessCandidates []string
	TrendFields      []string

	// Region defaults to geofence.Boston.
	Region geofence.Box
	// DefaultSaleYear defaults to reconcile.DefaultSaleYear.
	DefaultSaleYear int
	// Clock supplies the current time for the sale month default.
	Clock func() time.Time
}

// Valuator holds the loaded models and parcel index and serves valuations.
// It is built once at startup, never mutated, and safe for concurrent use.
type Valuator struct {
	index     parcels.Index
	predictor *Predictor
	region    geofence.Box
	allowed   []string
	saleYear  int
	clock     func() time.Time
}

// New builds a Valuator. Missing models or index are not an error here;
// Valuate reports them as apperr.ErrNotReady.
func New(cfg Config) *Valuator {
	v := &Valuator{
		index:     cfg.Index,
		predictor: NewPredictor(cfg.Baseline, cfg.Residual, cfg.Strategy, cfg.Version, cfg.AssessCandidates, cfg.TrendFields),
		region:    cfg.Region,
		saleYear:  cfg.DefaultSaleYear,
		clock:     cfg.Clock,
	}
	if v.region == (geofence.Box{}) {
		v.region = geofence.Boston
	}
	if v.saleYear <= 0 {
		v.saleYear = reconcile.DefaultSaleYear
	}
	if v.clock == nil {
		v.clock = time.Now
	}
	if v.predictor.Ready() {
		v.allowed = reconcile.AllowedKeys(cfg.Baseline.Spec(), cfg.Residual.Spec())
	}
	return v
}

// Ready reports whether both models and a non-empty index are loaded.
func (v *Valuator) Ready() bool {
	return v != nil && v.predictor.Ready() && v.index != nil && v.index.Len() > 0
}

// Valuate prices one request. The request coordinate and the snapped parcel
// coordinate must both lie inside the region.
func (v *Valuator) Valuate(ctx context.Context, req Request) (Result, error) {
	lat, lng, err := req.Coordinates()
	if err != nil {
		return Result{}, err
	}
	if err := v.regionOrDefault().Check(lat, lng); err != nil {
		return Result{}, fmt.Errorf("request coordinate: %w", err)
	}
	if !v.Ready() {
		return Result{}, fmt.Errorf("valuate: %w", apperr.ErrNotReady)
	}

	nearest, err := v.index.Nearest(lat, lng)
	if err != nil {
		return Result{}, err
	}

	rec := reconcile.Reconcile(req.Attributes(), nearest.Record, v.allowed,
		reconcile.DefaultsAt(v.saleYear, v.clock()))

	baseVec := features.Build(rec.Attributes, v.predictor.baseline.Spec())
	resVec := features.Build(rec.Attributes, v.predictor.residual.Spec())

	res, err := v.predictor.Predict(baseVec, resVec, nearest, lat, lng)
	if err != nil {
		return Result{}, err
	}
	res.Meta.FilledSaleYear = rec.SaleYear
	res.Meta.FilledSaleMonth = rec.SaleMonth

	if err := v.region.Check(res.SnappedLat, res.SnappedLng); err != nil {
		return Result{}, fmt.Errorf("snapped coordinate of parcel %d: %w", nearest.Index, err)
	}

	logging.FromContext(ctx).Debug("valuation",
		slog.Int("nearest_row_index", nearest.Index),
		slog.Float64("nearest_d2", nearest.DistanceSquared),
		slog.String("assess_source", string(res.Meta.AssessSource)),
		slog.String("strategy", res.Meta.Strategy.String()),
		slog.Float64("final_price", res.FinalPrice))

	return res, nil
}

// Nearest returns the parcel closest to the coordinate without pricing it.
func (v *Valuator) Nearest(lat, lng float64) (parcels.Match, error) {
	if v == nil || v.index == nil {
		return parcels.Match{}, fmt.Errorf("nearest: %w", apperr.ErrNotReady)
	}
	return v.index.Nearest(lat, lng)
}

func (v *Valuator) regionOrDefault() geofence.Box {
	if v == nil {
		return geofence.Boston
	}
	return v.region
}

// Info describes the loaded models for the model info endpoint.
type Info struct {
	Version              string       `json:"modelVersion"`
	Strategy             Strategy     `json:"strategy"`
	BaselineFeatures     []string     `json:"baselineFeatures"`
	BaselineCategoricals []string     `json:"baselineCategoricals"`
	ResidualFeatures     []string     `json:"residualFeatures"`
	ResidualCategoricals []string     `json:"residualCategoricals"`
	ParcelCount          int          `json:"parcelCount"`
	Region               geofence.Box `json:"region"`
	Ready                bool         `json:"ready"`
}

// Info summarizes the loaded state.
func (v *Valuator) Info() Info {
	info := Info{Region: v.regionOrDefault(), Ready: v.Ready()}
	if v == nil {
		return info
	}
	info.Version = v.predictor.version
	info.Strategy = v.predictor.strategy
	if v.index != nil {
		info.ParcelCount = v.index.Len()
	}
	if v.predictor.Ready() {
		b, r := v.predictor.baseline.Spec(), v.predictor.residual.Spec()
		info.BaselineFeatures, info.BaselineCategoricals = b.Names(), b.Categoricals()
		info.ResidualFeatures, info.ResidualCategoricals = r.Names(), r.Categoricals()
	}
	return info
}
