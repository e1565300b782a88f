package services

import (
	"context"

	"github.com/vdubya/aca-viewer/pkg/nlp"
	"github.com/vdubya/aca-viewer/pkg/viewer"
	"github.com/vdubya/aca-viewer/store"
)

// PipelineService resolves TOC and entity overlays for a document, either
// from the Foundry pipeline API or locally when simulation is enabled.
type PipelineService struct {
	Client     *PalantirClient
	Recognizer *nlp.Recognizer
	Simulate   bool
}

func NewPipelineService(client *PalantirClient, simulate bool) *PipelineService {
	return &PipelineService{
		Client:     client,
		Recognizer: nlp.NewRecognizer(),
		Simulate:   simulate,
	}
}

// Toc returns the document's table of contents. In simulate mode the
// structural TOC captured at extraction time is used.
func (s *PipelineService) Toc(ctx context.Context, doc *store.DocumentRecord) ([]viewer.TocEntry, error) {
	if s.Simulate {
		return doc.Toc, nil
	}
	return s.Client.Toc(ctx, doc.Name)
}

// Entities returns the document's entity overlay. In simulate mode the
// local recognizer runs against the stored text.
func (s *PipelineService) Entities(ctx context.Context, doc *store.DocumentRecord) ([]viewer.Entity, error) {
	if s.Simulate {
		return s.Recognizer.Entities(doc.Extracted())
	}
	return s.Client.Entities(ctx, doc.Name)
}
