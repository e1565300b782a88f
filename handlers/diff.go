package handlers

import (
	"net/http"
	"strconv"

	"github.com/vdubya/aca-viewer/pkg/diffview"
)

type diffResponse struct {
	DocA  string   `json:"doc_a"`
	DocB  string   `json:"doc_b"`
	Lines []string `json:"lines"`
}

// Diff compares two stored documents and returns a unified diff.
func (s *Server) Diff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	docA, ok := s.loadDocument(w, r, "docA")
	if !ok {
		return
	}
	docB, ok := s.loadDocument(w, r, "docB")
	if !ok {
		return
	}

	context := diffview.DefaultContext
	if raw := r.URL.Query().Get("context"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "context must be a non-negative integer")
			return
		}
		context = n
	}

	lines := diffview.Unified(docA.Text, docB.Text, context)
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, diffResponse{
		DocA:  docA.Name,
		DocB:  docB.Name,
		Lines: lines,
	})
}
