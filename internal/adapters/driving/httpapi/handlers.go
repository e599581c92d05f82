package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if status, err := s.index.Status(r.Context()); err == nil {
		resp.Ready = status.Ready
		resp.Generation = status.Generation
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchTitles(w http.ResponseWriter, r *http.Request) {
	q, err := parseTitleQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.search.SearchTitles(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewTitleSearchResponse(res))
}

func (s *Server) handleSearchNames(w http.ResponseWriter, r *http.Request) {
	q, err := parseNameQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.search.SearchNames(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewNameSearchResponse(res))
}

func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	doc, err := s.search.GetTitle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewTitleResult(doc))
}

func (s *Server) handleGetName(w http.ResponseWriter, r *http.Request) {
	doc, err := s.search.GetName(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewNameResult(doc))
}

// handleRebuild starts a rebuild in the background and answers 202. With
// ?wait=true it blocks until the build finishes and returns the record.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		rec, err := s.index.Rebuild(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, RebuildResponse{Status: rec.State.String(), Build: rec})
		return
	}

	ctx := s.background
	s.rebuilds.Add(1)
	go func() {
		defer s.rebuilds.Done()
		if _, err := s.index.Rebuild(ctx); err != nil {
			logger.Error("background rebuild failed: %v", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, RebuildResponse{Status: "accepted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("history"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: history must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	status, err := s.index.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := s.index.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := StatusResponse{Index: status, History: []domain.BuildRecord{}}
	if history != nil {
		resp.History = history
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusOf maps a domain error to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMissingDataset), errors.Is(err, domain.ErrSchemaViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBuildCancelled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorBody{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}
