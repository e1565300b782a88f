package extract

import (
	"context"
	"strings"

	"github.com/beevik/etree"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

// SecExtractor parses UFGS XML SEC specification sections. Section number
// (SCN), section title (STL) and part/subpart titles (TTL) feed the TOC;
// text nodes concatenated in document order form the content. Files that
// are not well-formed XML degrade to their raw text.
type SecExtractor struct{}

func NewSecExtractor() *SecExtractor {
	return &SecExtractor{}
}

func (e *SecExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil || doc.Root() == nil {
		// UFGS files in the wild are not always valid XML; the original
		// viewer decoded them leniently as UTF-8 text.
		return finalize(&Result{Pages: []string{string(content)}}), nil
	}

	var (
		out strings.Builder
		toc []viewer.TocEntry
	)
	walkSec(doc.Root(), 0, &out, &toc)

	res := finalize(&Result{Pages: []string{strings.TrimSpace(out.String())}})
	res.Toc = toc
	return res, nil
}

func (e *SecExtractor) SupportedExtensions() []string {
	return []string{".sec"}
}

func walkSec(el *etree.Element, depth int, out *strings.Builder, toc *[]viewer.TocEntry) {
	switch el.Tag {
	case "SCN", "STL":
		title := strings.TrimSpace(innerText(el))
		if title != "" {
			*toc = append(*toc, viewer.TocEntry{Title: title, Page: 0, Level: 0})
		}
	case "TTL":
		title := strings.TrimSpace(innerText(el))
		if title != "" {
			*toc = append(*toc, viewer.TocEntry{Title: title, Page: 0, Level: depth})
		}
	}

	childDepth := depth
	if el.Tag == "PRT" || el.Tag == "SPT" {
		childDepth++
	}

	for _, child := range el.Child {
		switch c := child.(type) {
		case *etree.CharData:
			text := strings.TrimSpace(c.Data)
			if text != "" {
				out.WriteString(text)
				out.WriteString("\n")
			}
		case *etree.Element:
			walkSec(c, childDepth, out, toc)
		}
	}
}

// innerText concatenates all character data beneath an element.
func innerText(el *etree.Element) string {
	var b strings.Builder
	for _, child := range el.Child {
		switch c := child.(type) {
		case *etree.CharData:
			b.WriteString(c.Data)
		case *etree.Element:
			b.WriteString(innerText(c))
		}
	}
	return b.String()
}
