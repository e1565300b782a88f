package handlers

import (
	"net/http"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

type adminOverview struct {
	Searches []viewer.SearchTerm `json:"searches"`
	Comments []viewer.Comment    `json:"comments"`
}

// AdminOverview lists every saved search and comment for review.
func (s *Server) AdminOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	searches, err := s.Repo.ListSearches()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list searches")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	comments, err := s.Repo.ListComments("")
	if err != nil {
		s.logger.WithError(err).Error("Failed to list comments")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, adminOverview{
		Searches: searches,
		Comments: comments,
	})
}
