package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
	"irea.valuation/internal/apperr"
)

// DefaultVersion tags results produced by the LightGBM pair.
const DefaultVersion = "baseline+residual(lgbm)"

// DefaultCategoricals are the candidate categorical features for both models.
var DefaultCategoricals = []string{"CITY", "ZIP_CODE", "INT_COND", "EXT_COND", "OVERALL_COND", "AC_TYPE", "HEAT_CLASS"}

// DefaultAssessCandidates are the parcel columns that may carry a prior
// assessed value, in priority order.
var DefaultAssessCandidates = []string{"TOTAL_VALUE_2025", "TOTAL_VALUE", "AV_TOTAL", "TOTAL_VAL"}

// DefaultTrendFields are parcel columns passed through as trend diagnostics.
var DefaultTrendFields = []string{"assess_year", "long_term_log_trend", "trend_5yr_norm", "long_term_norm"}

// Artifact describes one model file.
type Artifact struct {
	Path         string   `yaml:"path"`
	Categoricals []string `yaml:"categoricals"`
}

// Manifest describes the model pair and the parcel columns the predictor reads.
type Manifest struct {
	Version          string   `yaml:"version"`
	Baseline         Artifact `yaml:"baseline"`
	Residual         Artifact `yaml:"residual"`
	AssessCandidates []string `yaml:"assessCandidates"`
	TrendFields      []string `yaml:"trendFields"`
}

// DefaultManifest returns the manifest for the given model paths with every
// other field defaulted.
func DefaultManifest(baselinePath, residualPath string) Manifest {
	m := Manifest{
		Baseline: Artifact{Path: baselinePath},
		Residual: Artifact{Path: residualPath},
	}
	m.applyDefaults()
	return m
}

// LoadManifest reads a YAML manifest. Fields it leaves empty take their
// defaults; model paths left empty fall back to fallback.
func LoadManifest(path string, fallback Manifest) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf("model manifest %s: %w", path, apperr.ErrNotFound)
		}
		return Manifest{}, err
	}

	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse model manifest %s: %w", path, err)
	}

	if strings.TrimSpace(m.Baseline.Path) == "" {
		m.Baseline.Path = fallback.Baseline.Path
	}
	if strings.TrimSpace(m.Residual.Path) == "" {
		m.Residual.Path = fallback.Residual.Path
	}
	m.applyDefaults()
	return m, nil
}

func (m *Manifest) applyDefaults() {
	if strings.TrimSpace(m.Version) == "" {
		m.Version = DefaultVersion
	}
	if len(m.Baseline.Categoricals) == 0 {
		m.Baseline.Categoricals = slices.Clone(DefaultCategoricals)
	}
	if len(m.Residual.Categoricals) == 0 {
		m.Residual.Categoricals = slices.Clone(DefaultCategoricals)
	}
	if len(m.AssessCandidates) == 0 {
		m.AssessCandidates = slices.Clone(DefaultAssessCandidates)
	}
	if len(m.TrendFields) == 0 {
		m.TrendFields = slices.Clone(DefaultTrendFields)
	}
}

// Pair is the loaded baseline and residual models.
type Pair struct {
	Baseline Model
	Residual Model
}

// LoadPair loads both boosters the manifest names.
func LoadPair(m Manifest) (Pair, error) {
	baseline, err := LoadBooster("baseline", m.Baseline.Path, m.Baseline.Categoricals)
	if err != nil {
		return Pair{}, err
	}
	residual, err := LoadBooster("residual", m.Residual.Path, m.Residual.Categoricals)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Baseline: baseline, Residual: residual}, nil
}
