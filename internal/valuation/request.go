// Package valuation runs the inference pipeline: geo-fence, nearest parcel,
// attribute reconciliation, two feature vectors, two model evaluations and
// price composition.
package valuation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/gorilla/schema"
	"irea.valuation/internal/apperr"
	"irea.valuation/internal/utils"
)

// Request is one valuation request. Latitude and Longitude are required; every
// other field is optional. Keys the request type does not name are kept in Extra
// and passed through to reconciliation.
type Request struct {
	Latitude      *float64       `json:"latitude" schema:"latitude"`
	Longitude     *float64       `json:"longitude" schema:"longitude"`
	AreaSqft      *float64       `json:"areaSqft,omitempty" schema:"areaSqft"`
	LotSqft       *float64       `json:"lotSqft,omitempty" schema:"lotSqft"`
	Bedrooms      *float64       `json:"bedrooms,omitempty" schema:"bedrooms"`
	Bathrooms     *float64       `json:"bathrooms,omitempty" schema:"bathrooms"`
	BuiltYear     *int           `json:"builtYear,omitempty" schema:"builtYear"`
	PropertyType  any            `json:"propertyType,omitempty" schema:"-"`
	Renovated     any            `json:"renovated,omitempty" schema:"-"`
	Parking       any            `json:"parking,omitempty" schema:"-"`
	ParkingSpaces *int           `json:"parkingSpaces,omitempty" schema:"parkingSpaces"`
	SaleYear      *int           `json:"sale_year,omitempty" schema:"sale_year"`
	SaleMonth     *int           `json:"sale_month,omitempty" schema:"sale_month"`
	Extra         map[string]any `json:"-" schema:"-"`
}

// untyped fields accept any JSON value.
var untypedFields = []string{"propertyType", "renovated", "parking"}

var floatFields = []string{"latitude", "longitude", "areaSqft", "lotSqft", "bedrooms", "bathrooms"}

var intFields = []string{"builtYear", "parkingSpaces", "sale_year", "sale_month"}

func knownField(key string) bool {
	for _, list := range [][]string{floatFields, intFields, untypedFields} {
		for _, k := range list {
			if k == key {
				return true
			}
		}
	}
	return false
}

func (r *Request) floatField(key string) **float64 {
	switch key {
	case "latitude":
		return &r.Latitude
	case "longitude":
		return &r.Longitude
	case "areaSqft":
		return &r.AreaSqft
	case "lotSqft":
		return &r.LotSqft
	case "bedrooms":
		return &r.Bedrooms
	case "bathrooms":
		return &r.Bathrooms
	}
	return nil
}

func (r *Request) intField(key string) **int {
	switch key {
	case "builtYear":
		return &r.BuiltYear
	case "parkingSpaces":
		return &r.ParkingSpaces
	case "sale_year":
		return &r.SaleYear
	case "sale_month":
		return &r.SaleMonth
	}
	return nil
}

func (r *Request) untypedField(key string) *any {
	switch key {
	case "propertyType":
		return &r.PropertyType
	case "renovated":
		return &r.Renovated
	case "parking":
		return &r.Parking
	}
	return nil
}

// UnmarshalJSON accepts numbers or numeric strings for typed fields. Fields
// with a value of the wrong type are reported as validation errors.
func (r *Request) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("request body must be a JSON object")
	}

	*r = Request{}
	fieldErrors := make(map[string][]string)
	for key, v := range raw {
		if !knownField(key) {
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[key] = v
			continue
		}
		if v == nil {
			continue
		}
		r.set(key, v, fieldErrors)
	}

	if len(fieldErrors) > 0 {
		return apperr.NewValidationError(apperr.ErrInvalidInput, fieldErrors)
	}
	return nil
}

func (r *Request) set(key string, v any, fieldErrors map[string][]string) {
	if p := r.untypedField(key); p != nil {
		*p = v
		return
	}

	f, ok := utils.SafeFloat(v)
	if _, isBool := v.(bool); isBool {
		ok = false
	}
	if p := r.floatField(key); p != nil {
		if !ok {
			// Coordinates are checked for presence later.
			if key != "latitude" && key != "longitude" {
				addFieldError(fieldErrors, key)
			}
			return
		}
		*p = &f
		return
	}
	if p := r.intField(key); p != nil {
		if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			addFieldError(fieldErrors, key)
			return
		}
		n := int(f)
		*p = &n
	}
}

func addFieldError(fieldErrors map[string][]string, key string) {
	fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DecodeQuery builds a Request from URL query parameters.
func DecodeQuery(values url.Values) (Request, error) {
	var r Request
	fieldErrors := make(map[string][]string)

	if err := queryDecoder.Decode(&r, values); err != nil {
		multi, ok := err.(schema.MultiError)
		if !ok {
			return Request{}, err
		}
		for key := range multi {
			if key == "latitude" || key == "longitude" {
				continue
			}
			addFieldError(fieldErrors, key)
		}
	}

	// Unparsable or non-finite coordinates read as absent.
	r.Latitude, r.Longitude = nil, nil
	if lat, ok := utils.ParseFloatParam(values, "latitude", nil); ok {
		r.Latitude = &lat
	}
	if lng, ok := utils.ParseFloatParam(values, "longitude", nil); ok {
		r.Longitude = &lng
	}

	for key := range values {
		v := utils.SanitizeInput(values.Get(key))
		if p := r.untypedField(key); p != nil {
			if v != "" {
				*p = v
			}
			continue
		}
		if knownField(key) {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[key] = v
	}

	if len(fieldErrors) > 0 {
		return r, apperr.NewValidationError(apperr.ErrInvalidInput, fieldErrors)
	}
	return r, nil
}

// Coordinates returns the request coordinate, failing with
// apperr.ErrMissingInput when either part is absent or not finite.
func (r Request) Coordinates() (lat, lng float64, err error) {
	fieldErrors := make(map[string][]string)
	if r.Latitude == nil || math.IsNaN(*r.Latitude) || math.IsInf(*r.Latitude, 0) {
		fieldErrors["latitude"] = []string{"latitude is required"}
	}
	if r.Longitude == nil || math.IsNaN(*r.Longitude) || math.IsInf(*r.Longitude, 0) {
		fieldErrors["longitude"] = []string{"longitude is required"}
	}
	if len(fieldErrors) > 0 {
		return 0, 0, apperr.NewValidationError(apperr.ErrMissingInput, fieldErrors)
	}
	return *r.Latitude, *r.Longitude, nil
}

// Attributes flattens the request into the raw attribute mapping consumed by
// reconciliation. Typed fields override Extra keys of the same name.
func (r Request) Attributes() map[string]any {
	out := make(map[string]any, len(r.Extra)+13)
	for k, v := range r.Extra {
		out[k] = v
	}

	for _, key := range floatFields {
		if p := *r.floatField(key); p != nil {
			out[key] = *p
		}
	}
	for _, key := range intFields {
		if p := *r.intField(key); p != nil {
			out[key] = *p
		}
	}
	for _, key := range untypedFields {
		if v := *r.untypedField(key); v != nil {
			out[key] = v
		}
	}
	return out
}
