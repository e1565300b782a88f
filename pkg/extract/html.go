package extract

import (
	"bytes"
	"context"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// HTMLExtractor handles HTML uploads: body text for matching and diffing,
// a markdown rendering for display.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML content")
	}

	text := strings.TrimSpace(doc.Find("body").Text())

	res := finalize(&Result{Pages: []string{text}})

	if md, err := htmltomarkdown.ConvertString(string(content)); err == nil {
		res.Rendered = md
	}
	return res, nil
}

func (e *HTMLExtractor) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}
