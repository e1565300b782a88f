package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

var (
	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "viewer_extraction_duration_seconds",
			Help: "Time spent extracting text from uploaded documents",
		},
		[]string{"format"},
	)

	extractionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_extraction_errors_total",
			Help: "Number of document extraction failures",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(extractionDuration)
	prometheus.MustRegister(extractionErrors)
}

// ErrUnsupportedType is returned for file extensions no extractor claims.
var ErrUnsupportedType = errors.New("unsupported file type")

// Result is the outcome of extracting a single uploaded document.
type Result struct {
	// Text is the full extracted text, pages joined with "\n".
	Text string
	// Pages holds the per-page text. Single-page formats produce one entry.
	Pages []string
	// PageOffsets[i] is the byte offset of page i's text within Text.
	PageOffsets []int
	// Toc holds structural table-of-contents entries when the format
	// carries them (SEC sections, DOCX heading styles).
	Toc []viewer.TocEntry
	// Rendered is an alternate display form (markdown for HTML uploads);
	// empty when the extracted text is the display form.
	Rendered string
}

// Extractor converts one document format into a Result.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (*Result, error)
	SupportedExtensions() []string
}

var registry = []Extractor{
	NewPDFExtractor(),
	NewDocxExtractor(),
	NewSecExtractor(),
	NewHTMLExtractor(),
}

// ForFile returns the extractor claiming the file's extension.
func ForFile(name string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range registry {
		for _, supported := range e.SupportedExtensions() {
			if ext == supported {
				return e, nil
			}
		}
	}
	return nil, errors.Wrap(ErrUnsupportedType, ext)
}

// FromFile extracts the named document, dispatching on its extension.
func FromFile(ctx context.Context, name string, content []byte) (*Result, error) {
	e, err := ForFile(name)
	if err != nil {
		return nil, err
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues(format))
	defer timer.ObserveDuration()

	res, err := e.Extract(ctx, content)
	if err != nil {
		extractionErrors.WithLabelValues(format).Inc()
		return nil, errors.Wrapf(err, "extracting %s", name)
	}
	return res, nil
}

// finalize fills Text and PageOffsets from Pages.
func finalize(res *Result) *Result {
	offsets := make([]int, len(res.Pages))
	acc := 0
	for i, page := range res.Pages {
		offsets[i] = acc
		acc += len(page) + 1
	}
	res.PageOffsets = offsets
	res.Text = strings.Join(res.Pages, "\n")
	return res
}

// PageForOffset maps a byte offset in Result.Text to its page index:
// the greatest page whose offset does not exceed pos.
func (r *Result) PageForOffset(pos int) int {
	page := 0
	for i, off := range r.PageOffsets {
		if pos >= off {
			page = i
		}
	}
	return page
}

var headingPattern = regexp.MustCompile(`(?m)^\s*(SECTION\s+[0-9][0-9 .]*.*|PART\s+[0-9]+\s+.+|APPENDIX\s+[A-Z].*)\s*$`)

// ScanHeadings derives table-of-contents entries from heading-shaped lines
// in page text. Used for formats with no structural outline.
func ScanHeadings(pages []string) []viewer.TocEntry {
	var toc []viewer.TocEntry
	for pageIdx, page := range pages {
		for _, m := range headingPattern.FindAllString(page, -1) {
			title := strings.TrimSpace(m)
			level := 0
			if strings.HasPrefix(title, "PART") {
				level = 1
			}
			toc = append(toc, viewer.TocEntry{
				Title: title,
				Page:  pageIdx,
				Level: level,
			})
		}
	}
	return toc
}
