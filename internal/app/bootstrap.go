package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"irea.valuation/internal/appconf"
	"irea.valuation/internal/artifacts"
	"irea.valuation/internal/logging"
	"irea.valuation/internal/model"
	"irea.valuation/internal/parcels"
	"irea.valuation/internal/valuation"
)

// New loads the model pair and the parcel table named by cfg and returns the
// ready Application. Any loader failure is returned; callers treat it as fatal.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx = logging.WithLogger(ctx, logger)

	store, err := artifacts.NewStore(ctx, artifacts.Config{
		Kind:      cfg.ArtifactStore,
		Dir:       cfg.ArtifactDir,
		Bucket:    cfg.S3Bucket,
		Prefix:    cfg.S3Prefix,
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKeyID,
		SecretKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	manifest, err := loadManifest(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	paths, err := artifacts.Materialize(ctx, store, cfg.ArtifactDir,
		manifest.Baseline.Path, manifest.Residual.Path, cfg.ParcelSource)
	if err != nil {
		return nil, err
	}
	manifest.Baseline.Path, manifest.Residual.Path = paths[0], paths[1]
	parcelSource := paths[2]

	start := time.Now()
	pair, err := model.LoadPair(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	logging.LogStage(logger, "models_loaded", start,
		slog.String("version", manifest.Version),
		slog.Int("baseline_features", pair.Baseline.Spec().Len()),
		slog.Int("residual_features", pair.Residual.Spec().Len()))

	start = time.Now()
	columns := parcels.SelectColumns(
		[][]string{pair.Baseline.Spec().Names(), pair.Residual.Spec().Names()},
		slices.Concat(manifest.AssessCandidates, manifest.TrendFields)...)
	table, err := parcels.Load(ctx, parcelSource, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to load parcel table: %w", err)
	}
	logging.LogStage(logger, "parcel_table_loaded", start,
		slog.Int("rows", table.Len()),
		slog.Int("dropped", table.Dropped()),
		slog.Int("columns", len(table.Columns())))

	strategy, err := valuation.ParseStrategy(cfg.CompositionStrategy)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config: cfg,
		Logger: logger,
		Valuator: valuation.New(valuation.Config{
			Index:            parcels.NewScanIndex(table),
			Baseline:         pair.Baseline,
			Residual:         pair.Residual,
			Strategy:         strategy,
			Version:          manifest.Version,
			AssessCandidates: manifest.AssessCandidates,
			TrendFields:      manifest.TrendFields,
			DefaultSaleYear:  cfg.DefaultSaleYear,
		}),
	}, nil
}

func loadManifest(ctx context.Context, cfg appconf.Config, store artifacts.Store) (model.Manifest, error) {
	fallback := model.DefaultManifest(cfg.BaselineModel, cfg.ResidualModel)
	if cfg.ModelManifest == "" {
		return fallback, nil
	}

	paths, err := artifacts.Materialize(ctx, store, cfg.ArtifactDir, cfg.ModelManifest)
	if err != nil {
		return model.Manifest{}, err
	}
	m, err := model.LoadManifest(paths[0], fallback)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("failed to load model manifest: %w", err)
	}
	return m, nil
}
