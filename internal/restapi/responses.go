package restapi

import (
	"encoding/json"
	"net/http"

	"irea.valuation/internal/logging"
)

func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	setJSONResponseType(w)
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		logging.FromContext(r.Context()).Debug("failed to write response", "error", err)
	}
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}
