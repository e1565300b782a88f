package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vdubya/aca-viewer/services"
	"github.com/vdubya/aca-viewer/store"
)

// Server wires the HTTP API to the repository and pipeline services.
type Server struct {
	Repo      *store.Repository
	Pipelines *services.PipelineService
	logger    *logrus.Logger
}

func NewServer(repo *store.Repository, pipelines *services.PipelineService) *Server {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Server{
		Repo:      repo,
		Pipelines: pipelines,
		logger:    logger,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.Health)

	mux.Handle("/api/documents/upload", s.errorGuard(s.UploadDocument))
	mux.Handle("/api/documents", s.errorGuard(s.ListDocuments))
	mux.Handle("/api/documents/get", s.errorGuard(s.GetDocument))
	mux.Handle("/api/documents/delete", s.errorGuard(s.DeleteDocument))
	mux.Handle("/api/documents/download", s.errorGuard(s.DownloadDocument))
	mux.Handle("/api/documents/toc", s.errorGuard(s.DocumentToc))
	mux.Handle("/api/documents/entities", s.errorGuard(s.DocumentEntities))
	mux.Handle("/api/documents/view", s.errorGuard(s.ViewDocument))
	mux.Handle("/api/documents/hits", s.errorGuard(s.DocumentHits))

	mux.Handle("/api/searches/create", s.errorGuard(s.CreateSearch))
	mux.Handle("/api/searches", s.errorGuard(s.ListSearches))
	mux.Handle("/api/searches/delete", s.errorGuard(s.DeleteSearch))

	mux.Handle("/api/comments/add", s.errorGuard(s.AddComment))
	mux.Handle("/api/comments", s.errorGuard(s.ListComments))

	mux.Handle("/api/diff", s.errorGuard(s.Diff))

	mux.Handle("/api/admin/overview", AdminGate(s.errorGuard(s.AdminOverview)))

	return CORSMiddleware(mux)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.Repo.DB.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorGuard recovers handler panics into 500 responses so a malformed
// upload cannot take down the server.
func (s *Server) errorGuard(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("Handler panicked")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
