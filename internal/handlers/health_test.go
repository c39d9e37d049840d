package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lessonplanner-ai/internal/vectorstore"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type failingCounter struct{}

func (failingCounter) Count(context.Context, vectorstore.Filter) (int, error) {
	return 0, errors.New("connection refused")
}

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("database is closed") })

	index := vectorstore.NewIndex(vectorstore.NewMemoryStore(), "test")

	tests := []struct {
		name       string
		method     string
		db         Pinger
		index      ChunkCounter
		wantStatus int
		wantIssues int
	}{
		{"healthy", http.MethodGet, ok, index, http.StatusOK, 0},
		{"database down", http.MethodGet, down, index, http.StatusServiceUnavailable, 1},
		{"index down", http.MethodGet, ok, failingCounter{}, http.StatusServiceUnavailable, 1},
		{"both down", http.MethodGet, down, failingCounter{}, http.StatusServiceUnavailable, 2},
		{"wrong method", http.MethodPost, ok, index, http.StatusMethodNotAllowed, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.db, tt.index).ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantIssues < 0 {
				return
			}
			resp := decodeBody[HealthResponse](t, w)
			if len(resp.Issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d", resp.Issues, tt.wantIssues)
			}
			if tt.wantIssues == 0 && (resp.IndexedChunks == nil || *resp.IndexedChunks != 0) {
				t.Errorf("indexed_chunks = %v, want 0", resp.IndexedChunks)
			}
		})
	}
}
