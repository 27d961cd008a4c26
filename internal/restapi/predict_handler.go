package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"irea.valuation/internal/apperr"
	"irea.valuation/internal/valuation"
)

const maxRequestBody = 1 << 20

func (api *RestAPI) predictHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValuationRequest(w, r)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	res, err := api.Valuator.Valuate(r.Context(), req)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendJSON(w, r, http.StatusOK, res)
}

func decodeValuationRequest(w http.ResponseWriter, r *http.Request) (valuation.Request, error) {
	if r.Method == http.MethodGet {
		return valuation.DecodeQuery(r.URL.Query())
	}

	var req valuation.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		if apperr.FieldErrors(err) != nil {
			return req, err
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, apperr.NewValidationError(apperr.ErrInvalidInput, map[string][]string{"body": {"request body too large"}})
		}
		return req, apperr.NewValidationError(apperr.ErrInvalidInput, map[string][]string{"body": {"unable to parse request body"}})
	}
	return req, nil
}
