// Package app holds the process-wide state shared by handlers and middleware.
package app

import (
	"log/slog"

	"irea.valuation/internal/appconf"
	"irea.valuation/internal/valuation"
)

// Application holds the dependencies for the HTTP handlers, helpers and
// middleware. It is built once at startup and read-only afterwards.
type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Valuator *valuation.Valuator
}
