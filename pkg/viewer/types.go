package viewer

import "time"

// TocEntry is a single table-of-contents entry pointing into a document.
type TocEntry struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	Level int    `json:"level"`
}

// Entity represents a named entity recognized in a document, with a
// character span into the extracted text.
type Entity struct {
	Label      string  `json:"label"`
	Type       string  `json:"type"`
	Page       int     `json:"page"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// SearchTerm is a saved search with accumulated hit count and the
// highlight color assigned at creation time.
type SearchTerm struct {
	Term      string    `json:"term"`
	Hits      int64     `json:"hits"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchHit is one match of a saved term inside a document.
type SearchHit struct {
	Term    string `json:"term"`
	Snippet string `json:"snippet"`
	Page    int    `json:"page"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Exact   bool   `json:"exact"`
}

// Comment is an inline reviewer note attached to a snippet of a document.
type Comment struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Snippet   string    `json:"snippet"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// ColorPool holds the highlight colors cycled across saved search terms
// and entity types.
var ColorPool = []string{
	"#FFC107", "#03A9F4", "#8BC34A", "#E91E63",
	"#9C27B0", "#FF5722", "#607D8B", "#FF9800",
}

// NextColor returns the pool color for index i, wrapping around.
func NextColor(i int) string {
	return ColorPool[i%len(ColorPool)]
}
