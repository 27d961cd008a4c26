package model

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dmitryikh/leaves"
	"irea.valuation/internal/apperr"
	"irea.valuation/internal/features"
)

// ensemble is the part of a leaves ensemble the booster calls.
type ensemble interface {
	NFeatures() int
	PredictSingle(fvals []float64, nEstimators int) float64
}

// Booster evaluates a LightGBM text model. Categorical labels are mapped to
// the integer codes recorded with the model; labels the model never saw are
// passed as missing.
type Booster struct {
	spec     features.Spec
	ensemble ensemble
	codes    map[string]categoryCodes
}

// LoadBooster reads a LightGBM model file. categoricals lists candidate
// categorical features; those not in the model are ignored and those the model
// declares categorical are always included.
func LoadBooster(name, path string, categoricals []string) (*Booster, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model %s at %s: %w", name, path, apperr.ErrNotFound)
		}
		return nil, err
	}
	header, err := readHeader(f)
	f.Close() // nolint:errcheck
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}

	ens, err := leaves.LGEnsembleFromFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}
	return newBooster(name, ens, header, categoricals)
}

func newBooster(name string, ens ensemble, header modelHeader, categoricals []string) (*Booster, error) {
	if len(header.featureNames) == 0 {
		return nil, fmt.Errorf("model %s: no feature_names in model file", name)
	}
	if n := ens.NFeatures(); n != len(header.featureNames) {
		return nil, fmt.Errorf("model %s: ensemble expects %d features, header lists %d", name, n, len(header.featureNames))
	}

	cats := append([]string(nil), categoricals...)
	for _, idx := range header.categoricalIdx {
		if idx >= 0 && idx < len(header.featureNames) {
			cats = append(cats, header.featureNames[idx])
		}
	}
	spec := features.NewSpec(name, header.featureNames, cats)

	// pandas records categories for the columns LightGBM declared categorical,
	// in feature order.
	coded := spec.Categoricals()
	if len(header.categoricalIdx) > 0 {
		coded = coded[:0:0]
		for _, idx := range header.categoricalIdx {
			if idx >= 0 && idx < len(header.featureNames) {
				coded = append(coded, header.featureNames[idx])
			}
		}
	}

	codes := make(map[string]categoryCodes)
	for i, feature := range coded {
		if i < len(header.pandasCategorical) {
			codes[feature] = newCategoryCodes(header.pandasCategorical[i])
		}
	}

	return &Booster{spec: spec, ensemble: ens, codes: codes}, nil
}

func (b *Booster) Spec() features.Spec { return b.spec }

func (b *Booster) Predict(v features.Vector) (float64, error) {
	if err := checkVector(b.spec, v); err != nil {
		return 0, err
	}

	names := b.spec.Names()
	fvals := make([]float64, len(v.Cells))
	for i, cell := range v.Cells {
		if cell.Kind == features.Categorical {
			fvals[i] = b.code(names[i], cell.Label)
			continue
		}
		fvals[i] = cell.Value
	}
	return b.ensemble.PredictSingle(fvals, 0), nil
}

func (b *Booster) code(feature, label string) float64 {
	c, ok := b.codes[feature]
	if !ok {
		// No recorded categories: the label itself is the code.
		if f, err := strconv.ParseFloat(label, 64); err == nil {
			return f
		}
		return math.NaN()
	}
	return c.lookup(label)
}

// categoryCodes maps category labels to the positions LightGBM trained on.
type categoryCodes struct {
	byLabel  map[string]int
	byNumber map[float64]int
}

func newCategoryCodes(categories []any) categoryCodes {
	c := categoryCodes{
		byLabel:  make(map[string]int, len(categories)),
		byNumber: make(map[float64]int),
	}
	for i, cat := range categories {
		label := features.CategoricalLabel(cat)
		if _, dup := c.byLabel[label]; !dup {
			c.byLabel[label] = i
		}
		if n, ok := cat.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				if _, dup := c.byNumber[f]; !dup {
					c.byNumber[f] = i
				}
			}
		}
	}
	return c
}

// lookup tries an exact label match, then a numeric match so that "02119"
// finds a category trained as 2119.
func (c categoryCodes) lookup(label string) float64 {
	if i, ok := c.byLabel[label]; ok {
		return float64(i)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(label), 64); err == nil {
		if i, ok := c.byNumber[f]; ok {
			return float64(i)
		}
	}
	return math.NaN()
}

type modelHeader struct {
	featureNames      []string
	categoricalIdx    []int
	pandasCategorical [][]any
}

// readHeader pulls the feature names, declared categorical indices and the
// pandas category table out of a LightGBM text model.
func readHeader(r io.Reader) (modelHeader, error) {
	var h modelHeader

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "feature_names="):
			h.featureNames = strings.Fields(strings.TrimPrefix(line, "feature_names="))
		case strings.HasPrefix(line, "[categorical_feature:"):
			h.categoricalIdx = parseIndexList(strings.TrimSuffix(strings.TrimPrefix(line, "[categorical_feature:"), "]"))
		case strings.HasPrefix(line, "pandas_categorical:"):
			cats, err := parsePandasCategorical(strings.TrimPrefix(line, "pandas_categorical:"))
			if err != nil {
				return h, err
			}
			h.pandasCategorical = cats
		}
	}
	if err := scanner.Err(); err != nil {
		return h, fmt.Errorf("read model header: %w", err)
	}
	return h, nil
}

func parseIndexList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if i, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, i)
		}
	}
	return out
}

func parsePandasCategorical(s string) ([][]any, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var out [][]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse pandas_categorical: %w", err)
	}
	return out, nil
}
