package restapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/logging"
	"irea.valuation/internal/models"
	"irea.valuation/internal/utils"
)

func TestSecurityHeaders(t *testing.T) {
	api := createTestApi(t)

	rec := serveRequest(t, api, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	api := createTestApi(t)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"frontend origin", "http://localhost:3000", "http://localhost:3000"},
		{"loopback origin", "http://127.0.0.1:3000", "http://127.0.0.1:3000"},
		{"unknown origin", "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := serveRequest(t, api, req)

			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	api := createTestApi(t)

	t.Run("generated", func(t *testing.T) {
		rec := serveRequest(t, api, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, rec.Header().Get(requestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := serveRequest(t, api, req)
		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	handler := requestIDMiddleware(NewRequestLoggingMiddleware(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logging.FromContext(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	req.Header.Set(requestIDHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, sawLogger)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/predict", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "http_server", entry["component"])
}

func TestRateLimit(t *testing.T) {
	cfg := appconf.Defaults()
	cfg.RateLimit = 2
	api := createTestApiWithConfig(t, cfg, testValuator())
	handler := api.Routes()

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))

	body := decodeBody[models.ErrorResponse](t, last)
	assert.Equal(t, http.StatusTooManyRequests, body.Code)

	t.Run("clients are limited independently", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forged forwarding headers do not reset the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.77")
		req.Header.Set("X-Real-IP", "198.51.100.78")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	cfg := appconf.Defaults()
	cfg.RateLimit = 1
	proxies, err := utils.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	cfg.TrustedProxies = proxies
	handler := createTestApiWithConfig(t, cfg, testValuator()).Routes()

	viaProxy := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, viaProxy("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, viaProxy("203.0.113.1"))
	assert.Equal(t, http.StatusOK, viaProxy("203.0.113.2"))
}

func TestRateLimitStopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(5, 0, nil)
	rl.Stop()
	rl.Stop()
}

func TestCompressionMiddleware(t *testing.T) {
	payload := `{"data":"` + strings.Repeat("x", 4096) + `"}`
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))

	t.Run("gzip when accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Less(t, rec.Body.Len(), len(payload))
	})

	t.Run("identity otherwise", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, payload, rec.Body.String())
	})
}

func TestPredictHandlerWithoutValuator(t *testing.T) {
	api := createTestApi(t)
	api.Valuator = nil

	rec := postJSON(t, api, "/api/predict", `{"latitude": 42.31, "longitude": -71.05}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
