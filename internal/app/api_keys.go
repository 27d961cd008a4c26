package app

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeysEnabled reports whether requests must carry an API key.
func (app *Application) APIKeysEnabled() bool {
	return len(app.Config.APIKeys) > 0
}

// RequestHasInvalidAPIKey checks the X-API-Key header, falling back to the
// key query parameter. Every request is valid when no keys are configured.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	if !app.APIKeysEnabled() {
		return false
	}
	key := strings.TrimSpace(r.Header.Get("X-API-Key"))
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	return app.IsInvalidAPIKey(key)
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	for _, valid := range app.Config.APIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return false
		}
	}
	return true
}
