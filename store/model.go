package store

import (
	"time"

	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

// DocumentRecord is a stored upload with its extracted text and structure.
type DocumentRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Ext         string            `json:"ext"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Raw         []byte            `json:"-"`
	Text        string            `json:"-"`
	Rendered    string            `json:"-"`
	PageOffsets []int             `json:"page_offsets"`
	Toc         []viewer.TocEntry `json:"toc"`
	UploadedAt  time.Time         `json:"uploaded_at"`
}

// Pages reconstructs the per-page text slices from Text and PageOffsets.
func (d *DocumentRecord) Pages() []string {
	pages := make([]string, 0, len(d.PageOffsets))
	for i, off := range d.PageOffsets {
		end := len(d.Text)
		if i+1 < len(d.PageOffsets) {
			end = d.PageOffsets[i+1] - 1
		}
		if off > len(d.Text) {
			off = len(d.Text)
		}
		if end < off {
			end = off
		}
		pages = append(pages, d.Text[off:end])
	}
	return pages
}

// Extracted rebuilds the extraction-result view over the stored text,
// used by search and overlay rendering.
func (d *DocumentRecord) Extracted() *extract.Result {
	return &extract.Result{
		Text:        d.Text,
		Pages:       d.Pages(),
		PageOffsets: d.PageOffsets,
		Toc:         d.Toc,
		Rendered:    d.Rendered,
	}
}

// DocumentInfo is the listing view of a document, without content.
type DocumentInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Ext         string    `json:"ext"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	PageCount   int       `json:"page_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
