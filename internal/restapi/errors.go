package restapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"irea.valuation/internal/apperr"
	"irea.valuation/internal/logging"
	"irea.valuation/internal/models"
)

func (api *RestAPI) writeError(w http.ResponseWriter, r *http.Request, status int, text string, fieldErrors map[string][]string) {
	setJSONResponseType(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.NewErrorResponse(status, text, fieldErrors)); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode error response", "error", err)
	}
}

// errorResponse maps a pipeline error to its status and body.
func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		if errors.Is(err, apperr.ErrNotReady) {
			logging.LogError(logging.FromContext(r.Context()), "valuation not ready", err,
				slog.String("component", "valuation"))
			api.writeError(w, r, status, apperr.ErrNotReady.Error(), nil)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	api.writeError(w, r, status, clientErrorText(err), apperr.FieldErrors(err))
}

func clientErrorText(err error) string {
	for _, sentinel := range []error{apperr.ErrOutOfRegion, apperr.ErrMissingInput, apperr.ErrInvalidInput} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "internal server error", err,
		slog.String("path", r.URL.Path))
	api.writeError(w, r, http.StatusInternalServerError, "internal server error", nil)
}

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, http.StatusUnauthorized, "permission denied", nil)
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, http.StatusNotFound, "resource not found", nil)
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
}
