package indexer

import "fmt"

// Chunk represents a contiguous span of a document's text.
type Chunk struct {
	Index  int    // Chunk index within the document (starts at 0)
	Text   string // Chunk text content
	Tokens int    // Token count of Text
}

// Document is the input to the indexing pipeline.
type Document struct {
	ID   string
	Name string
	Text string
	Tags []string
}

// IndexResult summarizes a successful indexing run.
type IndexResult struct {
	DocumentID string     `json:"document_id"`
	Chunks     int        `json:"chunks"`
	TokenStats TokenStats `json:"token_stats"`
}

// IndexError reports that the index write stopped part way. Indexed points of
// Total are present in the index and the caller decides whether to roll back
// or retry.
type IndexError struct {
	DocumentID string
	Indexed    int
	Total      int
	Err        error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("document %s partially indexed (%d of %d chunks): %v", e.DocumentID, e.Indexed, e.Total, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
