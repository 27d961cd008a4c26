// Package webui serves a development-only HTML page for inspecting the loaded
// models, configuration and parcel lookups.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"irea.valuation/internal/app"
	"irea.valuation/internal/appconf"
)

type WebUI struct {
	*app.Application
}

// SetWebUIRoutes registers the debug page on router.
func (ui *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", ui.debugIndexHandler)
}

// redacted copies cfg with secrets masked.
func redacted(cfg appconf.Config) appconf.Config {
	if len(cfg.APIKeys) > 0 {
		cfg.APIKeys = []string{"<redacted>"}
	}
	if cfg.AWSAccessKeyID != "" {
		cfg.AWSAccessKeyID = "<redacted>"
	}
	if cfg.AWSSecretAccessKey != "" {
		cfg.AWSSecretAccessKey = "<redacted>"
	}
	return cfg
}
