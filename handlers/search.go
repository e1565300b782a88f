package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vdubya/aca-viewer/store"
)

type createSearchRequest struct {
	Term string `json:"term"`
}

func (s *Server) CreateSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	term := strings.TrimSpace(req.Term)
	if term == "" {
		writeError(w, http.StatusBadRequest, "term is required")
		return
	}

	saved, err := s.Repo.CreateSearch(term, time.Now().UTC())
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "term already saved")
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("term", term).Error("Failed to save search")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) ListSearches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	terms, err := s.Repo.ListSearches()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list searches")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

func (s *Server) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	term := r.URL.Query().Get("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term parameter")
		return
	}

	err := s.Repo.DeleteSearch(term)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "term not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("term", term).Error("Failed to delete search")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
