// Package features turns a reconciled attribute mapping into the ordered,
// type-coerced vector a regression model expects.
package features

import (
	"math"
	"slices"
)

// UnknownLabel is the category substituted for absent or blank categorical values.
const UnknownLabel = "Unknown"

// Kind is the declared type of a model feature.
type Kind uint8

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Spec is a model's feature schema: the ordered feature names and the subset
// that is categorical. It is immutable after construction.
type Spec struct {
	name        string
	names       []string
	categorical map[string]struct{}
}

// NewSpec builds a Spec. Categorical names that are not model features are ignored.
func NewSpec(name string, featureNames []string, categorical []string) Spec {
	names := slices.Clone(featureNames)
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	cats := make(map[string]struct{})
	for _, c := range categorical {
		if _, ok := present[c]; ok {
			cats[c] = struct{}{}
		}
	}

	return Spec{name: name, names: names, categorical: cats}
}

// Name identifies the model the schema belongs to.
func (s Spec) Name() string { return s.name }

// Len is the number of features.
func (s Spec) Len() int { return len(s.names) }

// Names returns a copy of the ordered feature names.
func (s Spec) Names() []string { return slices.Clone(s.names) }

// Kind returns the declared kind of the named feature.
func (s Spec) Kind(name string) Kind {
	if _, ok := s.categorical[name]; ok {
		return Categorical
	}
	return Numeric
}

// Categoricals returns the categorical feature names in feature order.
func (s Spec) Categoricals() []string {
	out := make([]string, 0, len(s.categorical))
	for _, n := range s.names {
		if _, ok := s.categorical[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Cell is one typed position of a Vector. Numeric cells carry Value (NaN when
// missing); categorical cells carry Label.
type Cell struct {
	Kind  Kind
	Value float64
	Label string
}

// Missing reports whether the cell holds the missing marker.
func (c Cell) Missing() bool {
	if c.Kind == Categorical {
		return c.Label == UnknownLabel
	}
	return math.IsNaN(c.Value)
}

// Vector is a fully populated feature vector aligned to Spec.
type Vector struct {
	Spec  Spec
	Cells []Cell
}

// Len is the number of cells, always equal to Spec.Len().
func (v Vector) Len() int { return len(v.Cells) }

// Get returns the cell for a feature name.
func (v Vector) Get(name string) (Cell, bool) {
	i := slices.Index(v.Spec.names, name)
	if i < 0 {
		return Cell{}, false
	}
	return v.Cells[i], true
}

// Build walks spec in order and coerces each reconciled value to the feature's
// declared kind. It never fails: absent keys become the missing marker.
func Build(attrs map[string]any, spec Spec) Vector {
	cells := make([]Cell, len(spec.names))
	for i, name := range spec.names {
		v, ok := attrs[name]
		if !ok {
			v = nil
		}
		cells[i] = Coerce(v, spec.Kind(name))
	}
	return Vector{Spec: spec, Cells: cells}
}
