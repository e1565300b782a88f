package extract

import (
	"bytes"
	"context"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls per-page plain text out of PDF uploads.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	reader := bytes.NewReader(content)

	r, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return nil, err
	}

	totalPage := r.NumPage()
	pages := make([]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	res := finalize(&Result{Pages: pages})
	res.Toc = ScanHeadings(res.Pages)
	return res, nil
}

func (e *PDFExtractor) SupportedExtensions() []string {
	return []string{".pdf"}
}
