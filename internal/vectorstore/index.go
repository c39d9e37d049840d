package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
)

const (
	defaultUpsertBatch = 64

	// maxQueryFetch bounds how far Query widens to resolve ties.
	maxQueryFetch = 4096
)

// pointNamespace scopes the deterministic chunk point IDs.
var pointNamespace = uuid.MustParse("6f1c54a2-3d0b-4c5e-9a57-0b6f2f7e8d41")

// Source describes the document a set of entries belongs to.
type Source struct {
	DocumentID   string
	DocumentName string
	Tags         []string
}

// Entry is one embedded chunk ready to be written.
type Entry struct {
	ChunkIndex int
	Text       string
	Vector     []float32
}

// Match is a retrieved chunk.
type Match struct {
	PointID      string
	DocumentID   string
	DocumentName string
	ChunkIndex   int
	Text         string
	Score        float32
	IndexedAt    time.Time
}

// Index is the chunk index over a single collection. Every backend failure
// is reported as apperr.ErrIndexUnavailable.
type Index struct {
	store      VectorStore
	collection string
	batchSize  int
	now        func() time.Time
}

// NewIndex wraps store for collection.
func NewIndex(store VectorStore, collection string) *Index {
	return &Index{
		store:      store,
		collection: collection,
		batchSize:  defaultUpsertBatch,
		now:        time.Now,
	}
}

// PointID returns the deterministic point ID of a document chunk.
func PointID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", documentID, chunkIndex))).String()
}

// Replace swaps all points of src.DocumentID for entries. It returns the
// number of points written; on error that count tells the caller how far
// the write got.
func (ix *Index) Replace(ctx context.Context, src Source, entries []Entry) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if src.DocumentID == "" {
		return 0, apperr.Invalid("document_id", "must not be empty")
	}
	if err := ix.store.DeleteByFilter(ctx, ix.collection, Filter{DocumentID: src.DocumentID}); err != nil {
		return 0, apperr.Wrap(apperr.ErrIndexUnavailable, "clear document "+src.DocumentID, err)
	}

	indexedAt := ix.now().UnixNano()
	tags := src.Tags
	if tags == nil {
		tags = []string{}
	}

	written := 0
	for start := 0; start < len(entries); start += ix.batchSize {
		end := min(start+ix.batchSize, len(entries))
		points := make([]Point, 0, end-start)
		for _, e := range entries[start:end] {
			points = append(points, Point{
				ID:  PointID(src.DocumentID, e.ChunkIndex),
				Vec: e.Vector,
				Meta: map[string]any{
					KeyDocumentID:   src.DocumentID,
					KeyDocumentName: src.DocumentName,
					KeyChunkIndex:   int64(e.ChunkIndex),
					KeyText:         e.Text,
					KeyTags:         tags,
					KeyIndexedAt:    indexedAt,
				},
			})
		}
		if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
			logger.ErrorContext(ctx, "index write interrupted",
				"document_id", src.DocumentID,
				"written", written,
				"total", len(entries),
				"error", err,
			)
			return written, apperr.Wrap(apperr.ErrIndexUnavailable, "upsert", err)
		}
		written += len(points)
	}

	logger.InfoContext(ctx, "document indexed", "document_id", src.DocumentID, "chunks", written)
	return written, nil
}

// Query returns up to topK matches by descending cosine similarity. Equal
// scores are ordered most recently indexed first, then by point ID.
func (ix *Index) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 {
		return nil, apperr.Invalid("top_k", "must be greater than 0")
	}
	if len(vector) == 0 {
		return nil, apperr.Invalid("vector", "must not be empty")
	}

	// Backends order equal scores by their own rule, so keep widening the
	// fetch while the cut-off score is still tied with the last result.
	limit := topK * 2
	var matches []Match
	for {
		results, err := ix.store.Search(ctx, ix.collection, vector, limit, filter)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrIndexUnavailable, "query", err)
		}

		matches = make([]Match, 0, len(results))
		for _, r := range results {
			matches = append(matches, matchFromResult(r))
		}
		sortMatches(matches)

		if len(results) < limit || limit >= maxQueryFetch {
			break
		}
		if matches[topK-1].Score != matches[len(matches)-1].Score {
			break
		}
		limit = min(limit*2, maxQueryFetch)
	}

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteDocument removes all points of a document.
func (ix *Index) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return apperr.Invalid("document_id", "must not be empty")
	}
	if err := ix.store.DeleteByFilter(ctx, ix.collection, Filter{DocumentID: documentID}); err != nil {
		return apperr.Wrap(apperr.ErrIndexUnavailable, "delete document "+documentID, err)
	}
	return nil
}

// Count returns the number of points matching filter.
func (ix *Index) Count(ctx context.Context, filter Filter) (int, error) {
	n, err := ix.store.Count(ctx, ix.collection, filter)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrIndexUnavailable, "count", err)
	}
	return n, nil
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.IndexedAt.Equal(b.IndexedAt) {
			return a.IndexedAt.After(b.IndexedAt)
		}
		return strings.Compare(a.PointID, b.PointID) < 0
	})
}

func matchFromResult(r SearchResult) Match {
	m := Match{PointID: r.PointID, Score: r.Score}
	m.DocumentID, _ = r.Meta[KeyDocumentID].(string)
	m.DocumentName, _ = r.Meta[KeyDocumentName].(string)
	m.Text, _ = r.Meta[KeyText].(string)
	m.ChunkIndex = int(payloadInt(r.Meta[KeyChunkIndex]))
	if ns := payloadInt(r.Meta[KeyIndexedAt]); ns > 0 {
		m.IndexedAt = time.Unix(0, ns)
	}
	return m
}

func payloadInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
