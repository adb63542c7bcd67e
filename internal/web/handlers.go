package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/JonMunkholm/personcsv/internal/core"
	"github.com/JonMunkholm/personcsv/internal/logging"
)

// legacySavedMessage is the body the first release answered /guardar with.
const legacySavedMessage = "Datos guardados correctamente."

type countResponse struct {
	Count int `json:"count"`
}

// legacyPersonRequest is the /guardar body with the first release's Spanish field names.
type legacyPersonRequest struct {
	Nombre *string  `json:"nombre"`
	Edad   *float64 `json:"edad"`
	Altura *float64 `json:"altura"`
}

func (req legacyPersonRequest) input() core.PersonInput {
	return core.PersonInput{Name: req.Nombre, Age: req.Edad, Height: req.Altura}
}

type legacySaveResponse struct {
	Mensaje string `json:"mensaje"`
}

type legacyCountResponse struct {
	NumeroFilas int `json:"numero_filas"`
}

// decodeJSON reads one JSON value from the request body into v, refusing
// bodies larger than limit bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, mbe.Limit)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// handleCreatePerson validates and appends one record.
func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var in core.PersonInput
	if err := decodeJSON(w, r, s.cfg.Server.MaxBodyBytes, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Append(WithRequestMetadata(r.Context(), r), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, res)
}

// handleCountPersons reports the number of stored records.
func (s *Server) handleCountPersons(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.Count(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, countResponse{Count: n})
}

// handleExportPersons streams the stored CSV as a download.
func (s *Server) handleExportPersons(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(s.service.Key())))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

func (s *Server) handleLegacySave(w http.ResponseWriter, r *http.Request) {
	var req legacyPersonRequest
	if err := decodeJSON(w, r, s.cfg.Server.MaxBodyBytes, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.service.Append(WithRequestMetadata(r.Context(), r), req.input()); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, legacySaveResponse{Mensaje: legacySavedMessage})
}

func (s *Server) handleLegacyCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.Count(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, legacyCountResponse{NumeroFilas: n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}
