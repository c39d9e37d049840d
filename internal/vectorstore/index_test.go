package vectorstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/vectorstore"
	"lessonplanner-ai/internal/vectorstore/mocks"
)

const collection = "lesson-index"

func entries(vecs ...[]float32) []vectorstore.Entry {
	out := make([]vectorstore.Entry, len(vecs))
	for i, v := range vecs {
		out[i] = vectorstore.Entry{ChunkIndex: i, Text: "chunk", Vector: v}
	}
	return out
}

func TestIndex_QueryReturnsFewerThanTopK(t *testing.T) {
	ctx := context.Background()
	ix := vectorstore.NewIndex(vectorstore.NewMemoryStore(), collection)

	src := vectorstore.Source{DocumentID: "doc-1", DocumentName: "water.txt"}
	if _, err := ix.Replace(ctx, src, entries([]float32{1, 0}, []float32{0, 1})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	matches, err := ix.Query(ctx, []float32{1, 0}, 5, vectorstore.Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Query(top_k=5) returned %d matches, want 2", len(matches))
	}
	if matches[0].DocumentID != "doc-1" || matches[0].DocumentName != "water.txt" || matches[0].ChunkIndex != 0 {
		t.Errorf("Query()[0] = %+v", matches[0])
	}
	if matches[0].Score < matches[1].Score {
		t.Errorf("Query() not ordered by score: %v then %v", matches[0].Score, matches[1].Score)
	}
}

func TestIndex_EmptyIndexIsNotAnError(t *testing.T) {
	ix := vectorstore.NewIndex(vectorstore.NewMemoryStore(), collection)

	matches, err := ix.Query(context.Background(), []float32{1, 0}, 5, vectorstore.Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Query() = %v, want no matches", matches)
	}
}

func TestIndex_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore()
	ix := vectorstore.NewIndex(store, collection)
	src := vectorstore.Source{DocumentID: "doc-1", DocumentName: "a.txt", Tags: []string{"math"}}

	if _, err := ix.Replace(ctx, src, entries([]float32{1, 0}, []float32{0, 1}, []float32{1, 1})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if _, err := ix.Replace(ctx, src, entries([]float32{1, 0}, []float32{0, 1})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if _, err := ix.Replace(ctx, src, entries([]float32{1, 0}, []float32{0, 1})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	n, err := ix.Count(ctx, vectorstore.Filter{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() after re-index = %d, want 2", n)
	}

	tagged, _ := ix.Count(ctx, vectorstore.Filter{Tags: []string{"math"}})
	if tagged != 2 {
		t.Errorf("Count(tag) = %d, want 2", tagged)
	}
}

func TestIndex_TiesPreferMostRecentlyIndexed(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore()
	ix := vectorstore.NewIndex(store, collection)

	// Same vector in both documents, indexed one after the other.
	if _, err := ix.Replace(ctx, vectorstore.Source{DocumentID: "old"}, entries([]float32{1, 0})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := ix.Replace(ctx, vectorstore.Source{DocumentID: "new"}, entries([]float32{1, 0})); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		matches, err := ix.Query(ctx, []float32{1, 0}, 1, vectorstore.Filter{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(matches) != 1 || matches[0].DocumentID != "new" {
			t.Fatalf("Query() = %+v, want the newer document", matches)
		}
	}
}

func TestIndex_TiesBeyondFetchWindowPreferMostRecentlyIndexed(t *testing.T) {
	ctx := context.Background()
	ix := vectorstore.NewIndex(vectorstore.NewMemoryStore(), collection)

	// Identical uploads: every chunk scores the same.
	docs := []string{"doc-a", "doc-b", "doc-c", "doc-d", "doc-e", "doc-f"}
	for _, id := range docs {
		if _, err := ix.Replace(ctx, vectorstore.Source{DocumentID: id}, entries([]float32{1, 0})); err != nil {
			t.Fatalf("Replace(%s) error = %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	newest := docs[len(docs)-1]

	matches, err := ix.Query(ctx, []float32{1, 0}, 1, vectorstore.Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 1 || matches[0].DocumentID != newest {
		t.Fatalf("Query() = %+v, want %s", matches, newest)
	}
}

func TestIndex_QueryWidensFetchWhileCutoffTied(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tied := func(n int, score float32) []vectorstore.SearchResult {
		out := make([]vectorstore.SearchResult, n)
		for i := range out {
			out[i] = vectorstore.SearchResult{
				PointID: fmt.Sprintf("p-%02d", i),
				Score:   score,
				Meta: map[string]any{
					vectorstore.KeyDocumentID: fmt.Sprintf("doc-%d", i),
					vectorstore.KeyIndexedAt:  base.Add(time.Duration(i) * time.Second).UnixNano(),
				},
			}
		}
		return out
	}

	tests := []struct {
		name      string
		results   []vectorstore.SearchResult
		topK      int
		wantLimit []int
		wantDoc   string
	}{
		{
			name:      "all tied, newest has the largest point id",
			results:   tied(6, 0.9),
			topK:      1,
			wantLimit: []int{2, 4, 8},
			wantDoc:   "doc-5",
		},
		{
			name:      "cut-off resolved in the first window",
			results:   append(tied(1, 0.9), tied(5, 0.1)...),
			topK:      1,
			wantLimit: []int{2},
			wantDoc:   "doc-0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockVectorStore(ctrl)

			var limits []int
			store.EXPECT().Search(gomock.Any(), collection, gomock.Any(), gomock.Any(), vectorstore.Filter{}).
				DoAndReturn(func(_ context.Context, _ string, _ []float32, k int, _ vectorstore.Filter) ([]vectorstore.SearchResult, error) {
					limits = append(limits, k)
					return tt.results[:min(k, len(tt.results))], nil
				}).AnyTimes()

			matches, err := vectorstore.NewIndex(store, collection).Query(context.Background(), []float32{1, 0}, tt.topK, vectorstore.Filter{})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(matches) != tt.topK || matches[0].DocumentID != tt.wantDoc {
				t.Errorf("Query() = %+v, want %s first", matches, tt.wantDoc)
			}
			if fmt.Sprint(limits) != fmt.Sprint(tt.wantLimit) {
				t.Errorf("Search limits = %v, want %v", limits, tt.wantLimit)
			}
		})
	}
}

func TestIndex_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	ix := vectorstore.NewIndex(vectorstore.NewMemoryStore(), collection)
	_, _ = ix.Replace(ctx, vectorstore.Source{DocumentID: "a"}, entries([]float32{1, 0}))
	_, _ = ix.Replace(ctx, vectorstore.Source{DocumentID: "b"}, entries([]float32{1, 0}))

	if err := ix.DeleteDocument(ctx, "a"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	matches, _ := ix.Query(ctx, []float32{1, 0}, 5, vectorstore.Filter{})
	for _, m := range matches {
		if m.DocumentID == "a" {
			t.Errorf("deleted document still retrievable: %+v", m)
		}
	}
	if err := ix.DeleteDocument(ctx, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("DeleteDocument(\"\") error = %v, want validation error", err)
	}
}

func TestIndex_QueryValidation(t *testing.T) {
	ix := vectorstore.NewIndex(vectorstore.NewMemoryStore(), collection)

	_, err := ix.Query(context.Background(), []float32{1}, 0, vectorstore.Filter{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Query(top_k=0) error = %v, want validation error", err)
	}
	if errors.Is(err, apperr.ErrIndexUnavailable) {
		t.Error("validation failure must not look like an outage")
	}
}

func TestIndex_BackendFailuresAreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ix := vectorstore.NewIndex(store, collection)
	ctx := context.Background()
	outage := errors.New("connection refused")

	store.EXPECT().Search(gomock.Any(), collection, gomock.Any(), 10, vectorstore.Filter{}).Return(nil, outage)
	_, err := ix.Query(ctx, []float32{1, 0}, 5, vectorstore.Filter{})
	if !errors.Is(err, apperr.ErrIndexUnavailable) || !errors.Is(err, outage) {
		t.Errorf("Query() error = %v, want ErrIndexUnavailable wrapping cause", err)
	}

	store.EXPECT().DeleteByFilter(gomock.Any(), collection, vectorstore.Filter{DocumentID: "d"}).Return(outage)
	if err := ix.DeleteDocument(ctx, "d"); !errors.Is(err, apperr.ErrIndexUnavailable) {
		t.Errorf("DeleteDocument() error = %v, want ErrIndexUnavailable", err)
	}

	store.EXPECT().Count(gomock.Any(), collection, vectorstore.Filter{}).Return(0, outage)
	if _, err := ix.Count(ctx, vectorstore.Filter{}); !errors.Is(err, apperr.ErrIndexUnavailable) {
		t.Errorf("Count() error = %v, want ErrIndexUnavailable", err)
	}
}

func TestIndex_ReplaceReportsPartialWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	ix := vectorstore.NewIndex(store, collection)

	many := make([]vectorstore.Entry, 100)
	for i := range many {
		many[i] = vectorstore.Entry{ChunkIndex: i, Text: "t", Vector: []float32{1}}
	}

	gomock.InOrder(
		store.EXPECT().DeleteByFilter(gomock.Any(), collection, vectorstore.Filter{DocumentID: "doc"}).Return(nil),
		store.EXPECT().Upsert(gomock.Any(), collection, gomock.Len(64)).Return(nil),
		store.EXPECT().Upsert(gomock.Any(), collection, gomock.Len(36)).Return(errors.New("timeout")),
	)

	written, err := ix.Replace(context.Background(), vectorstore.Source{DocumentID: "doc"}, many)
	if !errors.Is(err, apperr.ErrIndexUnavailable) {
		t.Fatalf("Replace() error = %v, want ErrIndexUnavailable", err)
	}
	if written != 64 {
		t.Errorf("Replace() written = %d, want 64", written)
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := vectorstore.PointID("doc-1", 3)
	if a != vectorstore.PointID("doc-1", 3) {
		t.Error("PointID() should be deterministic")
	}
	if a == vectorstore.PointID("doc-1", 4) || a == vectorstore.PointID("doc-2", 3) {
		t.Error("PointID() should differ across documents and chunks")
	}
}
