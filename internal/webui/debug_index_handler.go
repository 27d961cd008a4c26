package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"irea.valuation/internal/utils"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title     string
	Pre       string
	CenterLat float64
	CenterLng float64
}

func (ui *WebUI) writeDebugData(w http.ResponseWriter, title string, data any) {
	lat, lng := ui.Valuator.Info().Region.Center()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		CenterLat: lat,
		CenterLng: lng,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (ui *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var data any
	var title string

	switch query.Get("dataType") {
	case "model":
		data = ui.Valuator.Info()
		title = "Models and parcel table"
	case "config":
		data = redacted(ui.Config)
		title = "Configuration"
	case "nearest":
		fieldErrors := make(map[string][]string)
		lat, latOK := utils.ParseFloatParam(query, "latitude", fieldErrors)
		lng, lngOK := utils.ParseFloatParam(query, "longitude", fieldErrors)
		switch {
		case !latOK || !lngOK:
			data = map[string]any{"error": "latitude and longitude are required", "fields": fieldErrors}
		default:
			match, err := ui.Valuator.Nearest(lat, lng)
			if err != nil {
				data = map[string]string{"error": err.Error()}
			} else {
				data = match
			}
		}
		title = "Nearest parcel"
	default:
		data = map[string]string{
			"error": "Please use one of the following: model, config, nearest.",
		}
		title = "Choose a data type"
	}

	ui.writeDebugData(w, title, data)
}
