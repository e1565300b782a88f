package nlp

import (
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jdkato/prose/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

var (
	nerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "viewer_ner_duration_seconds",
			Help: "Time spent on local entity extraction",
		},
		[]string{"source"},
	)

	entityCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_entities_extracted_total",
			Help: "Number of entities extracted locally",
		},
		[]string{"entity_type"},
	)
)

func init() {
	prometheus.MustRegister(nerDuration)
	prometheus.MustRegister(entityCount)
}

const (
	EntityTypeSection   = "SECTION_REF"
	EntityTypeStandard  = "STANDARD_REF"
	EntityTypeSubmittal = "SUBMITTAL"
	EntityTypeDate      = "DATE"
	EntityTypeOrg       = "ORGANIZATION"
	EntityTypePerson    = "PERSON"
	EntityTypePlace     = "PLACE"
	EntityTypeMeasure   = "MEASUREMENT"
)

// Patterns for specification-document references; applied alongside the
// prose model so citations like "ASTM C 920" are caught even when the
// statistical tagger misses them.
var entityPatterns = map[string]*regexp.Regexp{
	EntityTypeSection:   regexp.MustCompile(`\b(?i:SECTION)\s+\d{2}\s?\d{2}\s?\d{2}(?:\.\d{2})?\b`),
	EntityTypeStandard:  regexp.MustCompile(`\b(?:ASTM|ANSI|AWS|NFPA|UL|UFC|UFGS|ACI|AISC|MIL-STD)[- ]?[A-Z]?\s?\d[\w.-]*\b`),
	EntityTypeSubmittal: regexp.MustCompile(`\b(?i:SD-\d{2}\s+[A-Za-z ]+?)(?:;|\.|\n)`),
	EntityTypeDate:      regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	EntityTypeMeasure:   regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:mm|cm|m|km|in|ft|psi|kPa|MPa|deg C|deg F|percent)\b`),
}

var proseLabels = map[string]string{
	"PERSON": EntityTypePerson,
	"GPE":    EntityTypePlace,
}

// Recognizer extracts named entities from document text.
type Recognizer struct {
	logger *logrus.Logger
}

func NewRecognizer() *Recognizer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Recognizer{logger: logger}
}

// Entities extracts entity spans from an extracted document. Regex
// patterns run first; prose's statistical model fills in people, places
// and organizations. Spans starting at an already-claimed offset are
// skipped; remaining overlaps are resolved at render time.
func (r *Recognizer) Entities(res *extract.Result) ([]viewer.Entity, error) {
	timer := prometheus.NewTimer(nerDuration.WithLabelValues("local"))
	defer timer.ObserveDuration()

	text := res.Text
	claimed := mapset.NewSet[int]()
	var entities []viewer.Entity

	add := func(start, end int, label, entityType string, confidence float64) {
		if end <= start || claimed.Contains(start) {
			return
		}
		claimed.Add(start)
		entities = append(entities, viewer.Entity{
			Label:      label,
			Type:       entityType,
			Page:       res.PageForOffset(start),
			Start:      start,
			End:        end,
			Confidence: confidence,
		})
		entityCount.WithLabelValues(entityType).Inc()
	}

	for entityType, pattern := range entityPatterns {
		for _, m := range pattern.FindAllStringIndex(text, -1) {
			label := strings.TrimRight(text[m[0]:m[1]], ";.\n")
			add(m[0], m[0]+len(label), label, entityType, 0.9)
		}
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create prose document")
		return nil, err
	}

	// prose entities carry no offsets; locate each occurrence with a
	// forward scan so repeated mentions map to distinct spans.
	cursor := make(map[string]int)
	for _, ent := range doc.Entities() {
		entityType, ok := proseLabels[ent.Label]
		if !ok {
			entityType = EntityTypeOrg
		}
		from := cursor[ent.Text]
		idx := strings.Index(text[from:], ent.Text)
		if idx < 0 {
			continue
		}
		start := from + idx
		cursor[ent.Text] = start + len(ent.Text)
		add(start, start+len(ent.Text), ent.Text, entityType, 0.75)
	}

	r.logger.WithFields(logrus.Fields{
		"content_length": len(text),
		"entities_count": len(entities),
	}).Info("Local entity extraction completed")

	return entities, nil
}
