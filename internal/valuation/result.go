package valuation

// Result is the outcome of one valuation.
type Result struct {
	PredictedPrice float64        `json:"predictedPrice"`
	FinalPrice     float64        `json:"finalPrice"`
	AssessPrice    float64        `json:"assessPrice"`
	Residual       float64        `json:"residual"`
	SnappedLat     float64        `json:"snappedLat"`
	SnappedLng     float64        `json:"snappedLng"`
	ModelVersion   string         `json:"modelVersion"`
	Trend          map[string]any `json:"trend"`
	Meta           Meta           `json:"meta"`
}

// Meta carries diagnostics about how the price was produced.
type Meta struct {
	AssessSource         Provenance `json:"assess_source"`
	BaselineRawPred      float64    `json:"baseline_raw_pred"`
	RowAssess            *float64   `json:"row_assess"`
	NearestRowIndex      int        `json:"nearest_row_index"`
	NearestD2            float64    `json:"nearest_d2"`
	NearestDistanceM     float64    `json:"nearest_distance_m"`
	PID                  any        `json:"pid"`
	FilledSaleYear       int        `json:"filled_sale_year"`
	FilledSaleMonth      int        `json:"filled_sale_month"`
	Strategy             Strategy   `json:"strategy"`
	BaselineCategoricals []string   `json:"baseline_categoricals"`
	ResidualCategoricals []string   `json:"residual_categoricals"`
}
