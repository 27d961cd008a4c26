package restapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/julienschmidt/httprouter"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/webui"
)

func (api *RestAPI) requireAPIKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		next(w, r)
	})
}

// SetRoutes registers every endpoint on router.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/health", api.healthHandler)
	router.Handler(http.MethodPost, "/api/predict", api.requireAPIKey(api.predictHandler))
	router.Handler(http.MethodGet, "/api/predict", api.requireAPIKey(api.predictHandler))
	router.Handler(http.MethodGet, "/api/model", api.requireAPIKey(api.modelInfoHandler))

	if api.Config.Env == appconf.Development {
		ui := &webui.WebUI{Application: api.Application}
		ui.SetWebUIRoutes(router)
	}

	router.NotFound = http.HandlerFunc(api.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
}

// Routes returns the full handler: the router behind the middleware chain.
// Outermost first: request id, request logging, panic recovery, security
// headers, CORS, rate limiting, compression.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	var h http.Handler = router
	h = CompressionMiddleware(h)
	if api.rateLimiter != nil {
		h = api.rateLimiter.Handler(h)
	}
	h = NewCORSMiddleware(api.Config.CORSOrigins)(h)
	h = securityHeaders(h)
	h = middleware.Recoverer(h)
	h = NewRequestLoggingMiddleware(api.Logger, api.Config.TrustedProxies)(h)
	h = requestIDMiddleware(h)
	return h
}
