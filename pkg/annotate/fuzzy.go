package annotate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/vdubya/aca-viewer/pkg/extract"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

// MaxEditDistance bounds the fuzzy matcher; the original viewer exposed
// a 0..5 slider defaulting to 1.
const (
	MaxEditDistance     = 5
	DefaultEditDistance = 1
)

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// FuzzyPositions returns the [start,end) byte spans of words in text whose
// case-insensitive Levenshtein distance to term is at most maxDistance.
func FuzzyPositions(text, term string, maxDistance int) [][2]int {
	var hits [][2]int
	lowerTerm := strings.ToLower(term)
	for _, m := range wordPattern.FindAllStringIndex(text, -1) {
		word := strings.ToLower(text[m[0]:m[1]])
		if levenshtein.ComputeDistance(word, lowerTerm) <= maxDistance {
			hits = append(hits, [2]int{m[0], m[1]})
		}
	}
	return hits
}

// ExactPositions returns case-insensitive literal occurrences of term.
func ExactPositions(text, term string) [][2]int {
	if term == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
	if err != nil {
		return nil
	}
	var hits [][2]int
	for _, m := range re.FindAllStringIndex(text, -1) {
		hits = append(hits, [2]int{m[0], m[1]})
	}
	return hits
}

// TermHits matches one saved term against an extracted document, merging
// exact and fuzzy occurrences, deduplicated by span and ordered by start.
func TermHits(res *extract.Result, term string, maxDistance int) []viewer.SearchHit {
	seen := make(map[[2]int]bool)
	var hits []viewer.SearchHit

	add := func(span [2]int, exact bool) {
		if seen[span] {
			return
		}
		seen[span] = true
		hits = append(hits, viewer.SearchHit{
			Term:    term,
			Snippet: res.Text[span[0]:span[1]],
			Page:    res.PageForOffset(span[0]),
			Start:   span[0],
			End:     span[1],
			Exact:   exact,
		})
	}

	for _, span := range ExactPositions(res.Text, term) {
		add(span, true)
	}
	for _, span := range FuzzyPositions(res.Text, term, maxDistance) {
		add(span, false)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return hits
}

// TruncateSnippet shortens a hit snippet for display labels.
func TruncateSnippet(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
