package web

import (
	"net/http"

	"github.com/ShirinGhmm/Thickness-files/internal/staging"
)

// All thickness handlers share one shape: hand the raw body to the
// orchestrator and return whatever it produced with HTTP 200. Failures are
// absorbed into the payload as an ErrorRecord, never an HTTP error status --
// callers distinguish outcomes by the body, not the status line.

// handleTable returns the full parsed table for the uploaded file.
func (s *Server) handleTable(format staging.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

		table, rec := s.service.TableFrom(r.Context(), format, body)
		if rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

// handleDatabaseValues returns database-ready aggregate values for the
// uploaded file.
func (s *Server) handleDatabaseValues(format staging.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

		agg, rec := s.service.DatabaseValuesFrom(r.Context(), format, body)
		if rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		writeJSON(w, http.StatusOK, agg)
	}
}

// handleValidation returns a validity verdict for the uploaded file.
func (s *Server) handleValidation(format staging.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

		verdict, rec := s.service.ValidateFrom(r.Context(), format, body)
		if rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		writeJSON(w, http.StatusOK, verdict)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
