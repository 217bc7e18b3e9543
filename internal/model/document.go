package model

import "time"

// Metadata is the structural summary of a normalized table.
type Metadata struct {
	RowCount    int      `json:"row_count"`
	ColumnNames []string `json:"column_names"`
}

// Document is a normalized tabular upload.
// This is a pure domain model with no database-specific dependencies or tags.
// Documents are immutable once stored; they are only created and deleted.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata"`
	SourceKey string    `json:"source_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the listing view of the document.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{ID: d.ID, Name: d.Name}
}

// DocumentSummary is the listing view of a Document.
type DocumentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Answer is a single extractive answer. Start and End are character offsets
// of the span within the context, when the engine reports them.
type Answer struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}
