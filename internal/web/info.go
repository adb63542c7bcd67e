package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/personcsv/internal/config"
	"github.com/JonMunkholm/personcsv/internal/web/templates"
)

const (
	serviceTitle       = "Person CSV service"
	serviceDescription = "Validates person records and appends them to a CSV dataset in object storage."
	serviceVersion     = "1.0"
)

var endpoints = []templates.Endpoint{
	{Method: http.MethodPost, Path: "/api/persons", Summary: "Validate and append a person"},
	{Method: http.MethodGet, Path: "/api/persons/count", Summary: "Number of stored persons"},
	{Method: http.MethodGet, Path: "/api/persons/export", Summary: "Download the dataset as CSV"},
	{Method: http.MethodGet, Path: "/health", Summary: "Liveness check"},
	{Method: http.MethodPost, Path: "/guardar", Summary: "Legacy append (nombre, edad, altura)"},
	{Method: http.MethodGet, Path: "/filas", Summary: "Legacy count (numero_filas)"},
}

func (s *Server) describe() templates.Info {
	mode := config.WriteModeOverwrite
	if s.service.Conditional() {
		mode = config.WriteModeConditional
	}
	return templates.Info{
		Title:       serviceTitle,
		Description: serviceDescription,
		Version:     serviceVersion,
		Key:         s.service.Key(),
		WriteMode:   mode,
		Limits:      s.service.Limits(),
		Endpoints:   endpoints,
	}
}

// handleIndex describes the service, as HTML for browsers and JSON otherwise.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	info := s.describe()
	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		writeJSON(w, r, http.StatusOK, info)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.InfoPage(info).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}
