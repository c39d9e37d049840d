package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks lessonplanner-ai/internal/vectorstore VectorStore

import "context"

// Payload keys written with every chunk point.
const (
	KeyDocumentID   = "document_id"
	KeyDocumentName = "document_name"
	KeyChunkIndex   = "chunk_index"
	KeyText         = "text"
	KeyTags         = "tags"
	KeyIndexedAt    = "indexed_at"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Filter restricts points by payload. Zero fields are ignored.
type Filter struct {
	// DocumentID matches the document_id payload exactly.
	DocumentID string
	// Tags matches points carrying at least one of the tags.
	Tags []string
}

// IsEmpty reports whether the filter matches every point.
func (f Filter) IsEmpty() bool {
	return f.DocumentID == "" && len(f.Tags) == 0
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k points ordered by descending cosine similarity.
	Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error)

	// DeleteByFilter removes every point matching a non-empty filter.
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error

	// Count returns the number of points matching filter.
	Count(ctx context.Context, collection string, filter Filter) (int, error)
}
