package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/geofence"
	"irea.valuation/internal/model"
	"irea.valuation/internal/models"
	"irea.valuation/internal/valuation"
)

func TestHealthHandler(t *testing.T) {
	api := createTestApi(t)

	rec := serveRequest(t, api, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.HealthResponse{Status: "OK"}, decodeBody[models.HealthResponse](t, rec))
}

func TestModelInfoHandler(t *testing.T) {
	api := createTestApi(t)

	rec := serveRequest(t, api, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeBody[valuation.Info](t, rec)
	assert.True(t, info.Ready)
	assert.Equal(t, model.DefaultVersion, info.Version)
	assert.Equal(t, valuation.LogRaw, info.Strategy)
	assert.Equal(t, 2, info.ParcelCount)
	assert.Equal(t, testBaselineSpec.Names(), info.BaselineFeatures)
	assert.Equal(t, []string{"CITY"}, info.ResidualCategoricals)
	assert.Equal(t, geofence.Boston, info.Region)
}

func TestUnknownRoutes(t *testing.T) {
	api := createTestApi(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown path", http.MethodGet, "/api/where/agency/1.json", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/predict", http.StatusMethodNotAllowed},
		{"post to health", http.MethodPost, "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveRequest(t, api, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.want, rec.Code)
			body := decodeBody[models.ErrorResponse](t, rec)
			assert.Equal(t, tt.want, body.Code)
		})
	}
}

func TestDebugPageOnlyInDevelopment(t *testing.T) {
	tests := []struct {
		env  appconf.Environment
		want int
	}{
		{appconf.Development, http.StatusOK},
		{appconf.Production, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.env.String(), func(t *testing.T) {
			cfg := appconf.Defaults()
			cfg.Env = tt.env
			cfg.RateLimit = 0
			api := createTestApiWithConfig(t, cfg, testValuator())

			rec := serveRequest(t, api, httptest.NewRequest(http.MethodGet, "/debug/?dataType=model", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
