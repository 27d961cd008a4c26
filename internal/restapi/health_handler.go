package restapi

import (
	"net/http"

	"irea.valuation/internal/models"
)

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, r, http.StatusOK, models.NewHealthResponse())
}

// modelInfoHandler describes the loaded models and parcel table.
func (api *RestAPI) modelInfoHandler(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, r, http.StatusOK, api.Valuator.Info())
}
