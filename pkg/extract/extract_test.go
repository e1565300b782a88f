package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want interface{}
	}{
		{"spec.pdf", &PDFExtractor{}},
		{"Spec.PDF", &PDFExtractor{}},
		{"report.docx", &DocxExtractor{}},
		{"legacy.doc", &DocxExtractor{}},
		{"section.sec", &SecExtractor{}},
		{"page.html", &HTMLExtractor{}},
	}
	for _, tt := range tests {
		e, err := ForFile(tt.name)
		require.NoError(t, err, tt.name)
		assert.IsType(t, tt.want, e, tt.name)
	}

	_, err := ForFile("image.png")
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = FromFile(context.Background(), "noextension", nil)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestPageForOffset(t *testing.T) {
	res := &Result{PageOffsets: []int{0, 10, 25}}

	assert.Equal(t, 0, res.PageForOffset(0))
	assert.Equal(t, 0, res.PageForOffset(9))
	assert.Equal(t, 1, res.PageForOffset(10))
	assert.Equal(t, 2, res.PageForOffset(100))
}

func TestFinalize(t *testing.T) {
	res := finalize(&Result{Pages: []string{"abc", "de"}})

	assert.Equal(t, "abc\nde", res.Text)
	assert.Equal(t, []int{0, 4}, res.PageOffsets)
}

func TestScanHeadings(t *testing.T) {
	pages := []string{
		"SECTION 09 91 00\nintro text\nPART 1 GENERAL\nbody",
		"PART 2 PRODUCTS\nmore",
	}

	toc := ScanHeadings(pages)
	require.Len(t, toc, 3)
	assert.Equal(t, "SECTION 09 91 00", toc[0].Title)
	assert.Equal(t, 0, toc[0].Level)
	assert.Equal(t, "PART 1 GENERAL", toc[1].Title)
	assert.Equal(t, 1, toc[1].Level)
	assert.Equal(t, 1, toc[2].Page)
}

const sampleSec = `<?xml version="1.0"?>
<SEC>
  <SCN>SECTION 09 91 00</SCN>
  <STL>PAINTS AND COATINGS</STL>
  <PRT>
    <TTL>PART 1 GENERAL</TTL>
    <TXT>Apply two coats minimum.</TXT>
    <SPT>
      <TTL>1.1 REFERENCES</TTL>
      <TXT>ASTM C 920 applies.</TXT>
    </SPT>
  </PRT>
</SEC>`

func TestSecExtractor(t *testing.T) {
	res, err := NewSecExtractor().Extract(context.Background(), []byte(sampleSec))
	require.NoError(t, err)

	assert.Contains(t, res.Text, "SECTION 09 91 00")
	assert.Contains(t, res.Text, "Apply two coats minimum.")
	assert.Contains(t, res.Text, "ASTM C 920 applies.")
	assert.Len(t, res.Pages, 1)

	require.Len(t, res.Toc, 4)
	assert.Equal(t, "SECTION 09 91 00", res.Toc[0].Title)
	assert.Equal(t, 0, res.Toc[0].Level)
	assert.Equal(t, "PART 1 GENERAL", res.Toc[2].Title)
	assert.Equal(t, 1, res.Toc[2].Level)
	assert.Equal(t, "1.1 REFERENCES", res.Toc[3].Title)
	assert.Equal(t, 2, res.Toc[3].Level)
}

func TestSecExtractorInvalidXMLFallsBack(t *testing.T) {
	raw := []byte("not xml at all, just notes")

	res, err := NewSecExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, string(raw), res.Text)
	assert.Empty(t, res.Toc)
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Introduction</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>Hello </w:t></w:r>
      <w:r><w:t>world</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxExtractor(t *testing.T) {
	content := buildDocx(t, sampleDocumentXML)

	res, err := NewDocxExtractor().Extract(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, "Introduction\nHello world", res.Text)
	require.Len(t, res.Toc, 1)
	assert.Equal(t, "Introduction", res.Toc[0].Title)
	assert.Equal(t, 0, res.Toc[0].Level)
}

func TestDocxExtractorMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewDocxExtractor().Extract(context.Background(), buf.Bytes())
	assert.Error(t, err)
}

func TestDocxExtractorNotAZip(t *testing.T) {
	_, err := NewDocxExtractor().Extract(context.Background(), []byte("plain text"))
	assert.Error(t, err)
}

func TestHTMLExtractor(t *testing.T) {
	html := `<html><head><title>skip</title></head><body><h1>Spec</h1><p>Paint the wall.</p></body></html>`

	res, err := NewHTMLExtractor().Extract(context.Background(), []byte(html))
	require.NoError(t, err)

	assert.Contains(t, res.Text, "Spec")
	assert.Contains(t, res.Text, "Paint the wall.")
	assert.NotContains(t, res.Text, "skip")
	assert.NotEmpty(t, res.Rendered)
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		level int
		ok    bool
	}{
		{"Heading1", 0, true},
		{"Heading3", 2, true},
		{"heading2", 1, true},
		{"BodyText", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		level, ok := headingLevel(tt.style)
		assert.Equal(t, tt.ok, ok, tt.style)
		if ok {
			assert.Equal(t, tt.level, level, tt.style)
		}
	}
}
