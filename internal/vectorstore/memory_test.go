package vectorstore

import (
	"context"
	"testing"
)

func TestMemoryStore_SearchOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	points := []Point{
		{ID: "a", Vec: []float32{1, 0}, Meta: map[string]any{KeyDocumentID: "d1"}},
		{ID: "b", Vec: []float32{1, 1}, Meta: map[string]any{KeyDocumentID: "d1"}},
		{ID: "c", Vec: []float32{0, 1}, Meta: map[string]any{KeyDocumentID: "d2"}},
	}
	if err := store.Upsert(ctx, "col", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := store.Search(ctx, "col", []float32{1, 0}, 3, Filter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(results) != len(want) {
		t.Fatalf("Search() returned %d results, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].PointID != id {
			t.Errorf("Search()[%d] = %s, want %s", i, results[i].PointID, id)
		}
	}
	if results[0].Score < 0.999 {
		t.Errorf("identical vector score = %v, want ~1", results[0].Score)
	}
}

func TestMemoryStore_Filter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Upsert(ctx, "col", []Point{
		{ID: "a", Vec: []float32{1, 0}, Meta: map[string]any{KeyDocumentID: "d1", KeyTags: []string{"math"}}},
		{ID: "b", Vec: []float32{1, 0}, Meta: map[string]any{KeyDocumentID: "d2", KeyTags: []any{"art"}}},
	})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 2},
		{"by document", Filter{DocumentID: "d2"}, 1},
		{"by tag", Filter{Tags: []string{"math"}}, 1},
		{"by tag list payload", Filter{Tags: []string{"art", "music"}}, 1},
		{"no match", Filter{DocumentID: "d1", Tags: []string{"art"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.Count(ctx, "col", tt.filter)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("Count() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestMemoryStore_DeleteByFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Upsert(ctx, "col", []Point{
		{ID: "a", Vec: []float32{1}, Meta: map[string]any{KeyDocumentID: "d1"}},
		{ID: "b", Vec: []float32{1}, Meta: map[string]any{KeyDocumentID: "d2"}},
	})

	if err := store.DeleteByFilter(ctx, "col", Filter{}); err == nil {
		t.Error("DeleteByFilter() with empty filter should be refused")
	}
	if err := store.DeleteByFilter(ctx, "col", Filter{DocumentID: "d1"}); err != nil {
		t.Fatalf("DeleteByFilter() error = %v", err)
	}
	n, _ := store.Count(ctx, "col", Filter{})
	if n != 1 {
		t.Errorf("Count() after delete = %d, want 1", n)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Upsert(ctx, "col", []Point{{ID: "a", Vec: []float32{1, 0}}})

	if _, err := store.Search(ctx, "col", []float32{1, 0}, 0, Filter{}); err == nil {
		t.Error("Search() with k=0 should return error")
	}
	if _, err := store.Search(ctx, "col", []float32{1, 0, 0}, 1, Filter{}); err == nil {
		t.Error("Search() with mismatched dimension should return error")
	}
	if err := store.Upsert(ctx, "col", []Point{{Vec: []float32{1, 0}}}); err == nil {
		t.Error("Upsert() without id should return error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Search(cancelled, "col", []float32{1, 0}, 1, Filter{}); err == nil {
		t.Error("Search() with cancelled context should return error")
	}
}

func TestMemoryStore_EmptyCollection(t *testing.T) {
	results, err := NewMemoryStore().Search(context.Background(), "missing", []float32{1}, 5, Filter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty collection = %v, want none", results)
	}
}
