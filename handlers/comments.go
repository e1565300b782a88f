package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

type addCommentRequest struct {
	File    string `json:"file"`
	Snippet string `json:"snippet"`
	Note    string `json:"note"`
}

func (s *Server) AddComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Snippet) == "" || strings.TrimSpace(req.Note) == "" {
		writeError(w, http.StatusBadRequest, "snippet and note are required")
		return
	}

	comment := &viewer.Comment{
		ID:        uuid.NewString(),
		File:      req.File,
		Snippet:   req.Snippet,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.CreateComment(comment); err != nil {
		s.logger.WithError(err).Error("Failed to save comment")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	comments, err := s.Repo.ListComments(r.URL.Query().Get("file"))
	if err != nil {
		s.logger.WithError(err).Error("Failed to list comments")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
