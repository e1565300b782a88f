package annotate

import (
	"fmt"
	"html"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

// Span is a highlight region in the extracted text.
type Span struct {
	Start int
	End   int
	Color string
	Title string
}

// BuildSpans merges entity overlays and saved-search hits into a single
// ordered span list. Entity types are colored by first-seen order from the
// shared pool; search spans keep the color assigned to their term.
// Overlapping spans are dropped in favor of the earliest.
func BuildSpans(entities []viewer.Entity, hits []viewer.SearchHit, terms []viewer.SearchTerm) []Span {
	termColors := make(map[string]string, len(terms))
	for _, t := range terms {
		termColors[t.Term] = t.Color
	}

	typeColors := make(map[string]string)
	seenTypes := mapset.NewSet[string]()

	var spans []Span
	for _, ent := range entities {
		if ent.End <= ent.Start {
			continue
		}
		if seenTypes.Add(ent.Type) {
			typeColors[ent.Type] = viewer.NextColor(seenTypes.Cardinality() - 1)
		}
		spans = append(spans, Span{
			Start: ent.Start,
			End:   ent.End,
			Color: typeColors[ent.Type],
			Title: fmt.Sprintf("%s: %s", ent.Type, ent.Label),
		})
	}
	for _, hit := range hits {
		color := termColors[hit.Term]
		if color == "" {
			color = viewer.ColorPool[0]
		}
		spans = append(spans, Span{
			Start: hit.Start,
			End:   hit.End,
			Color: color,
			Title: "search: " + hit.Term,
		})
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	// Drop overlaps, keeping the earliest span.
	kept := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.End
	}
	return kept
}

// EntityTypes returns the distinct entity types in first-seen order with
// their legend colors.
func EntityTypes(entities []viewer.Entity) []viewer.SearchTerm {
	seen := mapset.NewSet[string]()
	var legend []viewer.SearchTerm
	for _, ent := range entities {
		if seen.Add(ent.Type) {
			legend = append(legend, viewer.SearchTerm{
				Term:  ent.Type,
				Color: viewer.NextColor(seen.Cardinality() - 1),
			})
		}
	}
	return legend
}

// RenderHTML produces the annotated document view: per-page sections with
// anchors, TOC navigation, highlight marks and a legend.
func RenderHTML(name string, res *extract.Result, toc []viewer.TocEntry, spans []Span, legend []viewer.SearchTerm) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s · ACA Viewer</title>\n", html.EscapeString(name))
	b.WriteString("<style>body{font-family:sans-serif;margin:2rem}pre{white-space:pre-wrap}mark{padding:0 2px;border-radius:2px}nav a{display:block}.legend span{padding:2px 6px;margin-right:4px;border-radius:2px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(name))

	if len(legend) > 0 {
		b.WriteString("<div class=\"legend\">")
		for _, l := range legend {
			fmt.Fprintf(&b, "<span style=\"background:%s\">%s</span>", l.Color, html.EscapeString(l.Term))
		}
		b.WriteString("</div>\n")
	}

	if len(toc) > 0 {
		b.WriteString("<nav>\n")
		for _, entry := range toc {
			indent := strings.Repeat("&nbsp;&nbsp;", entry.Level)
			fmt.Fprintf(&b, "<a href=\"#page-%d\">%s%s</a>\n", entry.Page, indent, html.EscapeString(entry.Title))
		}
		b.WriteString("</nav>\n")
	}

	for pageIdx, page := range res.Pages {
		pageStart := res.PageOffsets[pageIdx]
		fmt.Fprintf(&b, "<section class=\"page\" id=\"page-%d\">\n<pre>", pageIdx)
		b.WriteString(markPage(page, pageStart, spans))
		b.WriteString("</pre>\n</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// markPage escapes one page of text and wraps span regions in <mark>.
func markPage(page string, pageStart int, spans []Span) string {
	var b strings.Builder
	cursor := 0
	for _, s := range spans {
		start := s.Start - pageStart
		end := s.End - pageStart
		if end <= 0 || start >= len(page) {
			continue
		}
		if start < 0 {
			start = 0
		}
		if start < cursor {
			continue
		}
		if end > len(page) {
			end = len(page)
		}
		b.WriteString(html.EscapeString(page[cursor:start]))
		fmt.Fprintf(&b, "<mark style=\"background:%s\" title=\"%s\">%s</mark>",
			s.Color, html.EscapeString(s.Title), html.EscapeString(page[start:end]))
		cursor = end
	}
	b.WriteString(html.EscapeString(page[cursor:]))
	return b.String()
}
