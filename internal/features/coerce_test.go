package features

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64 // NaN means missing
	}{
		{name: "nil", in: nil, want: math.NaN()},
		{name: "float", in: 1850.5, want: 1850.5},
		{name: "int", in: 3, want: 3},
		{name: "int64", in: int64(1999), want: 1999},
		{name: "uint8", in: uint8(2), want: 2},
		{name: "bool true", in: true, want: 1},
		{name: "bool false", in: false, want: 0},
		{name: "json number", in: json.Number("42"), want: 42},
		{name: "plain string", in: "450000", want: 450000},
		{name: "thousands separators", in: "1,234,567.5", want: 1234567.5},
		{name: "padded", in: "  12 ", want: 12},
		{name: "empty", in: "", want: math.NaN()},
		{name: "nan text", in: "NaN", want: math.NaN()},
		{name: "none text", in: "None", want: math.NaN()},
		{name: "null text", in: "null", want: math.NaN()},
		{name: "garbage", in: "two", want: math.NaN()},
		{name: "infinite float", in: math.Inf(1), want: math.NaN()},
		{name: "infinite text", in: "inf", want: math.NaN()},
		{name: "bytes", in: []byte("7"), want: 7},
		{name: "unsupported type", in: []int{1}, want: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumericValue(tt.in)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "expected missing marker, got %v", got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCategoricalLabel(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: UnknownLabel},
		{name: "empty", in: "", want: UnknownLabel},
		{name: "blank", in: "   ", want: UnknownLabel},
		{name: "nan", in: math.NaN(), want: UnknownLabel},
		{name: "text", in: "DORCHESTER", want: "DORCHESTER"},
		{name: "integral float", in: 2118.0, want: "2118"},
		{name: "fractional float", in: 2.5, want: "2.5"},
		{name: "int", in: 2, want: "2"},
		{name: "bool", in: true, want: "True"},
		{name: "json number", in: json.Number("02118"), want: "02118"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoricalLabel(tt.in))
		})
	}
}

func TestCoerceIsTotal(t *testing.T) {
	inputs := []any{nil, "", "x", 1, 1.5, true, math.NaN(), map[string]any{}, []byte("1,0")}
	for _, in := range inputs {
		num := Coerce(in, Numeric)
		assert.Equal(t, Numeric, num.Kind)

		cat := Coerce(in, Categorical)
		assert.Equal(t, Categorical, cat.Kind)
		assert.NotEmpty(t, cat.Label)
	}
}
