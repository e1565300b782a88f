package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vdubya/aca-viewer/pkg/annotate"
	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/metrics"
	"github.com/vdubya/aca-viewer/pkg/viewer"
	"github.com/vdubya/aca-viewer/store"
)

const maxUploadBytes = 64 << 20

type uploadResponse struct {
	store.DocumentInfo
	Toc      []viewer.TocEntry `json:"toc"`
	Rendered string            `json:"rendered,omitempty"`
}

// UploadDocument ingests a multipart upload: extracts text, pages and
// structural TOC, then persists the document.
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload")
		return
	}
	if len(content) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	res, err := extract.FromFile(r.Context(), header.Filename, content)
	if errors.Is(err, extract.ErrUnsupportedType) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("file", header.Filename).Error("Extraction failed")
		writeError(w, http.StatusUnprocessableEntity, "could not extract document")
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &store.DocumentRecord{
		ID:          uuid.NewString(),
		Name:        header.Filename,
		Ext:         ext,
		ContentType: contentType,
		Size:        int64(len(content)),
		Raw:         content,
		Text:        res.Text,
		Rendered:    res.Rendered,
		PageOffsets: res.PageOffsets,
		Toc:         res.Toc,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.Repo.CreateDocument(doc); err != nil {
		s.logger.WithError(err).Error("Failed to persist document")
		writeError(w, http.StatusInternalServerError, "could not store document")
		return
	}
	metrics.DocumentsIngested.WithLabelValues(ext).Inc()

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocumentInfo: store.DocumentInfo{
			ID:          doc.ID,
			Name:        doc.Name,
			Ext:         doc.Ext,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			PageCount:   len(doc.PageOffsets),
			UploadedAt:  doc.UploadedAt,
		},
		Toc:      doc.Toc,
		Rendered: doc.Rendered,
	})
}

func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	docs, err := s.Repo.ListDocuments()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list documents")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		DocumentInfo: store.DocumentInfo{
			ID:          doc.ID,
			Name:        doc.Name,
			Ext:         doc.Ext,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			PageCount:   len(doc.PageOffsets),
			UploadedAt:  doc.UploadedAt,
		},
		Toc:      doc.Toc,
		Rendered: doc.Rendered,
	})
}

func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		writeError(w, http.StatusBadRequest, "missing docId parameter")
		return
	}

	err := s.Repo.DeleteDocument(docID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Error("Failed to delete document")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.Write(doc.Raw)
}

func (s *Server) DocumentToc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}

	toc, err := s.Pipelines.Toc(r.Context(), doc)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", doc.ID).Error("TOC pipeline failed")
		writeError(w, http.StatusBadGateway, "pipeline unavailable")
		return
	}
	if toc == nil {
		toc = []viewer.TocEntry{}
	}
	writeJSON(w, http.StatusOK, toc)
}

func (s *Server) DocumentEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}

	entities, err := s.Pipelines.Entities(r.Context(), doc)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", doc.ID).Error("NER pipeline failed")
		writeError(w, http.StatusBadGateway, "pipeline unavailable")
		return
	}
	if entities == nil {
		entities = []viewer.Entity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

// ViewDocument renders the annotated HTML view: entity overlays plus
// saved-search highlights.
func (s *Server) ViewDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}

	maxDistance, ok := parseMaxDistance(w, r)
	if !ok {
		return
	}

	entities, err := s.Pipelines.Entities(r.Context(), doc)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", doc.ID).Error("NER pipeline failed")
		writeError(w, http.StatusBadGateway, "pipeline unavailable")
		return
	}
	toc, err := s.Pipelines.Toc(r.Context(), doc)
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", doc.ID).Error("TOC pipeline failed")
		writeError(w, http.StatusBadGateway, "pipeline unavailable")
		return
	}

	terms, err := s.Repo.ListSearches()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list searches")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	res := doc.Extracted()
	var hits []viewer.SearchHit
	for _, term := range terms {
		hits = append(hits, annotate.TermHits(res, term.Term, maxDistance)...)
	}

	spans := annotate.BuildSpans(entities, hits, terms)
	legend := annotate.EntityTypes(entities)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, annotate.RenderHTML(doc.Name, res, toc, spans, legend))
}

type hitResponse struct {
	Term    string `json:"term"`
	Label   string `json:"label"`
	Snippet string `json:"snippet"`
	Page    int    `json:"page"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Exact   bool   `json:"exact"`
}

const (
	maxHitResults  = 50
	snippetDisplay = 30
)

// DocumentHits lists saved-search matches in a document, capped at 50,
// and accumulates each matched term's hit count.
func (s *Server) DocumentHits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.loadDocument(w, r, "docId")
	if !ok {
		return
	}

	maxDistance, ok := parseMaxDistance(w, r)
	if !ok {
		return
	}

	terms, err := s.Repo.ListSearches()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list searches")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	res := doc.Extracted()
	hits := make([]hitResponse, 0)
	for _, term := range terms {
		termHits := annotate.TermHits(res, term.Term, maxDistance)
		if len(termHits) == 0 {
			continue
		}

		if err := s.Repo.IncrementHits(term.Term, int64(len(termHits))); err != nil {
			s.logger.WithError(err).WithField("term", term.Term).Error("Failed to record hits")
		}
		metrics.SearchHitsRecorded.Add(float64(len(termHits)))

		for _, h := range termHits {
			hits = append(hits, hitResponse{
				Term:    h.Term,
				Label:   h.Term + " (p" + strconv.Itoa(h.Page+1) + "): " + annotate.TruncateSnippet(h.Snippet, snippetDisplay),
				Snippet: h.Snippet,
				Page:    h.Page,
				Start:   h.Start,
				End:     h.End,
				Exact:   h.Exact,
			})
		}
	}

	if len(hits) > maxHitResults {
		hits = hits[:maxHitResults]
	}
	writeJSON(w, http.StatusOK, hits)
}

// loadDocument fetches the document named by the query parameter, writing
// the error response itself when the lookup fails.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request, param string) (*store.DocumentRecord, bool) {
	docID := r.URL.Query().Get(param)
	if docID == "" {
		writeError(w, http.StatusBadRequest, "missing "+param+" parameter")
		return nil, false
	}

	doc, err := s.Repo.GetDocument(docID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	if err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Error("Failed to load document")
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	return doc, true
}

func parseMaxDistance(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("maxDistance")
	if raw == "" {
		return annotate.DefaultEditDistance, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > annotate.MaxEditDistance {
		writeError(w, http.StatusBadRequest, "maxDistance must be between 0 and 5")
		return 0, false
	}
	return n, true
}
