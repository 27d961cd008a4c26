package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"irea.valuation/internal/app"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/features"
	"irea.valuation/internal/model"
	"irea.valuation/internal/parcels"
	"irea.valuation/internal/valuation"
)

var (
	testBaselineSpec = features.NewSpec("baseline", []string{"LIVING_AREA", "CITY", "BED_RMS", "sale_year", "sale_month"}, []string{"CITY"})
	testResidualSpec = features.NewSpec("residual", []string{"BED_RMS", "CITY", "sale_month"}, []string{"CITY"})
)

func testValuator() *valuation.Valuator {
	table := parcels.NewTable([]parcels.Record{
		{"PID": "000", "LATITUDE": "42.35", "LONGITUDE": "-71.06", "TOTAL_VALUE_2025": "600000", "BED_RMS": "4", "CITY": "BOSTON"},
		{"PID": "001", "LATITUDE": "42.311", "LONGITUDE": "-71.051", "TOTAL_VALUE_2025": "450000", "BED_RMS": "2", "CITY": "DORCHESTER"},
	}, []string{"PID", "LATITUDE", "LONGITUDE", "TOTAL_VALUE_2025", "BED_RMS", "CITY"})

	return valuation.New(valuation.Config{
		Index:    parcels.NewScanIndex(table),
		Baseline: model.NewStatic(testBaselineSpec, 12.0),
		Residual: model.NewFunc(testResidualSpec, func(v features.Vector) float64 {
			cell, _ := v.Get("BED_RMS")
			if math.IsNaN(cell.Value) {
				return 0
			}
			return 0.01 * cell.Value
		}),
		Clock: func() time.Time { return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC) },
	})
}

// createTestApiWithConfig builds a RestAPI over the fixture valuator.
func createTestApiWithConfig(t *testing.T, cfg appconf.Config, valuator *valuation.Valuator) *RestAPI {
	t.Helper()
	api := NewRestAPI(&app.Application{
		Config:   cfg,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Valuator: valuator,
	})
	t.Cleanup(api.Close)
	return api
}

func createTestApi(t *testing.T) *RestAPI {
	cfg := appconf.Defaults()
	cfg.Env = appconf.Test
	cfg.RateLimit = 0
	return createTestApiWithConfig(t, cfg, testValuator())
}

// serveRequest runs req through the full middleware chain.
func serveRequest(t *testing.T, api *RestAPI, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, api *RestAPI, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serveRequest(t, api, req)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}
