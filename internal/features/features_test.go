package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() Spec {
	return NewSpec("baseline",
		[]string{"LIVING_AREA", "CITY", "BED_RMS", "ZIP_CODE", "sale_month"},
		[]string{"CITY", "ZIP_CODE", "HEAT_CLASS"})
}

func TestNewSpec(t *testing.T) {
	spec := testSpec()

	assert.Equal(t, "baseline", spec.Name())
	assert.Equal(t, 5, spec.Len())
	assert.Equal(t, []string{"CITY", "ZIP_CODE"}, spec.Categoricals(), "categoricals outside the feature list are dropped")
	assert.Equal(t, Categorical, spec.Kind("CITY"))
	assert.Equal(t, Numeric, spec.Kind("BED_RMS"))
	assert.Equal(t, Numeric, spec.Kind("NOT_A_FEATURE"))

	names := spec.Names()
	names[0] = "mutated"
	assert.Equal(t, "LIVING_AREA", spec.Names()[0], "Names returns a copy")
}

func TestBuildKeepsSchemaOrderAndLength(t *testing.T) {
	spec := testSpec()

	tests := []struct {
		name  string
		attrs map[string]any
	}{
		{name: "empty", attrs: map[string]any{}},
		{name: "nil map", attrs: nil},
		{name: "extra keys only", attrs: map[string]any{"foo": 1, "bar": "baz", "PID": "001"}},
		{name: "full", attrs: map[string]any{
			"LIVING_AREA": "1,850", "CITY": "BOSTON", "BED_RMS": 3.0, "ZIP_CODE": 2118.0, "sale_month": 6,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := Build(tt.attrs, spec)
			require.Equal(t, spec.Len(), vec.Len())
			for i, name := range spec.Names() {
				assert.Equal(t, spec.Kind(name), vec.Cells[i].Kind, "cell %d (%s)", i, name)
			}
		})
	}
}

func TestBuildDefaultsAbsentValues(t *testing.T) {
	vec := Build(map[string]any{"BED_RMS": 3}, testSpec())

	city, ok := vec.Get("CITY")
	require.True(t, ok)
	assert.Equal(t, UnknownLabel, city.Label)
	assert.True(t, city.Missing())

	area, ok := vec.Get("LIVING_AREA")
	require.True(t, ok)
	assert.True(t, math.IsNaN(area.Value))
	assert.True(t, area.Missing())

	beds, ok := vec.Get("BED_RMS")
	require.True(t, ok)
	assert.Equal(t, 3.0, beds.Value)
	assert.False(t, beds.Missing())

	_, ok = vec.Get("NOT_A_FEATURE")
	assert.False(t, ok)
}

func TestBuildCoercesValues(t *testing.T) {
	vec := Build(map[string]any{
		"LIVING_AREA": "1,850",
		"CITY":        "",
		"BED_RMS":     "three",
		"ZIP_CODE":    2118.0,
		"sale_month":  nil,
	}, testSpec())

	assert.Equal(t, 1850.0, vec.Cells[0].Value)
	assert.Equal(t, UnknownLabel, vec.Cells[1].Label)
	assert.True(t, math.IsNaN(vec.Cells[2].Value))
	assert.Equal(t, "2118", vec.Cells[3].Label)
	assert.True(t, math.IsNaN(vec.Cells[4].Value))
}
