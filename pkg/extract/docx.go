package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

// DocxExtractor reads the OOXML word/document.xml part of a .docx upload.
// Paragraphs become lines; Heading-styled paragraphs feed the TOC.
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

func (e *DocxExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.Wrap(err, "opening docx archive")
	}

	var docPart *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return nil, errors.New("docx archive has no word/document.xml")
	}

	rc, err := docPart.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening word/document.xml")
	}
	defer rc.Close()

	text, toc, err := parseDocumentXML(rc)
	if err != nil {
		return nil, err
	}

	res := finalize(&Result{Pages: []string{text}})
	res.Toc = toc
	return res, nil
}

func (e *DocxExtractor) SupportedExtensions() []string {
	return []string{".docx", ".doc"}
}

// parseDocumentXML walks the WordprocessingML token stream, joining w:t
// runs and breaking on w:p paragraph ends.
func parseDocumentXML(r io.Reader) (string, []viewer.TocEntry, error) {
	dec := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		toc       []viewer.TocEntry
		inRunText bool
		style     string
	)

	flush := func() {
		line := paragraph.String()
		paragraph.Reset()
		if level, ok := headingLevel(style); ok && strings.TrimSpace(line) != "" {
			toc = append(toc, viewer.TocEntry{
				Title: strings.TrimSpace(line),
				Page:  0,
				Level: level,
			})
		}
		style = ""
		out.WriteString(line)
		out.WriteString("\n")
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, errors.Wrap(err, "decoding word/document.xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRunText = true
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case "tab":
				paragraph.WriteString("\t")
			case "br":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inRunText {
				paragraph.Write(t)
			}
		}
	}
	if paragraph.Len() > 0 {
		flush()
	}

	return strings.TrimRight(out.String(), "\n"), toc, nil
}

// headingLevel maps Word paragraph styles like "Heading2" to a TOC level.
func headingLevel(style string) (int, bool) {
	lower := strings.ToLower(style)
	if !strings.HasPrefix(lower, "heading") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(lower, "heading"))
	if err != nil {
		return 0, true
	}
	return n - 1, true
}
