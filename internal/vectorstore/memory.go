package vectorstore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore doing brute-force cosine search.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Point)}
}

// Upsert inserts or replaces points by ID.
func (m *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string]Point)
		m.collections[collection] = c
	}
	for _, p := range points {
		if p.ID == "" {
			return fmt.Errorf("point id is required")
		}
		meta := make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}
		c[p.ID] = Point{ID: p.ID, Vec: slices.Clone(p.Vec), Meta: meta}
	}
	return nil
}

// Search scores every matching point and returns the best k.
func (m *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []SearchResult
	for _, p := range m.collections[collection] {
		if !matches(p.Meta, filter) {
			continue
		}
		if len(p.Vec) != len(query) {
			return nil, fmt.Errorf("vector size mismatch: point %s has %d, query has %d", p.ID, len(p.Vec), len(query))
		}
		meta := make(map[string]any, len(p.Meta))
		for key, v := range p.Meta {
			meta[key] = v
		}
		results = append(results, SearchResult{PointID: p.ID, Score: cosine(query, p.Vec), Meta: meta})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PointID < results[j].PointID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByFilter removes every point matching a non-empty filter.
func (m *MemoryStore) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filter.IsEmpty() {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.collections[collection] {
		if matches(p.Meta, filter) {
			delete(m.collections[collection], id)
		}
	}
	return nil
}

// Count returns the number of points matching filter.
func (m *MemoryStore) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, p := range m.collections[collection] {
		if matches(p.Meta, filter) {
			n++
		}
	}
	return n, nil
}

func matches(meta map[string]any, f Filter) bool {
	if f.DocumentID != "" {
		if id, _ := meta[KeyDocumentID].(string); id != f.DocumentID {
			return false
		}
	}
	if len(f.Tags) > 0 {
		for _, tag := range payloadStrings(meta[KeyTags]) {
			if slices.Contains(f.Tags, tag) {
				return true
			}
		}
		return false
	}
	return true
}

func payloadStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
