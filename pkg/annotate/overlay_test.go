package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

func TestBuildSpansDropsOverlaps(t *testing.T) {
	entities := []viewer.Entity{
		{Label: "ASTM C 920", Type: "STANDARD_REF", Start: 0, End: 10},
	}
	hits := []viewer.SearchHit{
		{Term: "astm", Start: 5, End: 9},   // overlaps the entity
		{Term: "astm", Start: 20, End: 24}, // clear of it
	}
	terms := []viewer.SearchTerm{{Term: "astm", Color: "#03A9F4"}}

	spans := BuildSpans(entities, hits, terms)
	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 20, spans[1].Start)
	assert.Equal(t, "#03A9F4", spans[1].Color)
}

func TestBuildSpansEntityColorsByType(t *testing.T) {
	entities := []viewer.Entity{
		{Label: "a", Type: "T1", Start: 0, End: 1},
		{Label: "b", Type: "T2", Start: 5, End: 6},
		{Label: "c", Type: "T1", Start: 10, End: 11},
	}

	spans := BuildSpans(entities, nil, nil)
	require.Len(t, spans, 3)
	assert.Equal(t, spans[0].Color, spans[2].Color)
	assert.NotEqual(t, spans[0].Color, spans[1].Color)
}

func TestEntityTypes(t *testing.T) {
	entities := []viewer.Entity{
		{Type: "PERSON"}, {Type: "PLACE"}, {Type: "PERSON"},
	}

	legend := EntityTypes(entities)
	require.Len(t, legend, 2)
	assert.Equal(t, "PERSON", legend[0].Term)
	assert.Equal(t, viewer.ColorPool[0], legend[0].Color)
	assert.Equal(t, "PLACE", legend[1].Term)
	assert.Equal(t, viewer.ColorPool[1], legend[1].Color)
}

func TestRenderHTML(t *testing.T) {
	res := &extract.Result{
		Text:        "hello <world>\nsecond page",
		Pages:       []string{"hello <world>", "second page"},
		PageOffsets: []int{0, 14},
	}
	toc := []viewer.TocEntry{{Title: "Start", Page: 0, Level: 0}}
	spans := []Span{{Start: 0, End: 5, Color: "#FFC107", Title: "search: hello"}}

	out := RenderHTML("doc.sec", res, toc, spans, nil)

	assert.Contains(t, out, `<mark style="background:#FFC107" title="search: hello">hello</mark>`)
	assert.Contains(t, out, "&lt;world&gt;")
	assert.Contains(t, out, `id="page-0"`)
	assert.Contains(t, out, `id="page-1"`)
	assert.Contains(t, out, `href="#page-0"`)
	assert.NotContains(t, out, "<world>")
}

func TestMarkPageSpansClippedToPage(t *testing.T) {
	// Span crosses the page boundary; the second page keeps its share.
	page := "second page"
	out := markPage(page, 14, []Span{{Start: 10, End: 20, Color: "#FFC107", Title: "x"}})
	assert.True(t, strings.HasPrefix(out, "<mark"))
	assert.Contains(t, out, ">second</mark>")
}
