package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"irea.valuation/internal/appconf"
)

func TestIsInvalidAPIKey(t *testing.T) {
	app := &Application{Config: appconf.Config{APIKeys: []string{"key", "frontend"}}}

	assert.True(t, app.IsInvalidAPIKey(""))
	assert.True(t, app.IsInvalidAPIKey("wrong"))
	assert.False(t, app.IsInvalidAPIKey("key"))
	assert.False(t, app.IsInvalidAPIKey("frontend"))
}

func TestRequestHasInvalidAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		url     string
		header  string
		invalid bool
	}{
		{"no keys configured", nil, "/api/predict", "", false},
		{"missing key", []string{"key"}, "/api/predict", "", true},
		{"query key", []string{"key"}, "/api/predict?key=key", "", false},
		{"header key", []string{"key"}, "/api/predict", "key", false},
		{"header wins over query", []string{"key"}, "/api/predict?key=key", "nope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &Application{Config: appconf.Config{APIKeys: tt.keys}}
			r := httptest.NewRequest("GET", tt.url, nil)
			if tt.header != "" {
				r.Header.Set("X-API-Key", tt.header)
			}
			assert.Equal(t, tt.invalid, app.RequestHasInvalidAPIKey(r))
		})
	}
}
