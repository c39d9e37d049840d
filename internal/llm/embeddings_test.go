package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func newTestEmbeddingsClient(baseURL string, size, retries int) *EmbeddingsClient {
	c := NewEmbeddingsClient(baseURL, "test-key", "test-model", size, retries, time.Second)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080", "test-key", "test-model", 3072, 2, time.Second)
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewEmbeddingsClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.ExpectedSize != 3072 {
		t.Errorf("NewEmbeddingsClient() ExpectedSize = %v, want 3072", client.ExpectedSize)
	}
	if client.MaxRetries != 2 {
		t.Errorf("NewEmbeddingsClient() MaxRetries = %v, want 2", client.MaxRetries)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name         string
		texts        []string
		expectedSize int
		serverResp   func(w http.ResponseWriter, r *http.Request)
		wantErr      bool
		wantCount    int
	}{
		{
			name:         "successful embedding",
			texts:        []string{"Hello", "World"},
			expectedSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}

				resp := EmbeddingsResponse{
					Data: []EmbeddingData{
						{Index: 0, Embedding: make([]float64, 8)},
						{Index: 1, Embedding: make([]float64, 8)},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantCount: 2,
		},
		{
			name:         "empty input",
			texts:        []string{},
			expectedSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				// Should not be called
			},
			wantErr: true,
		},
		{
			name:         "wrong embedding count",
			texts:        []string{"Hello", "World"},
			expectedSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{
						{Embedding: make([]float64, 8)},
					},
				}
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:         "wrong vector size",
			texts:        []string{"Hello"},
			expectedSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{
						{Embedding: make([]float64, 4)}, // Wrong size
					},
				}
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:         "client error",
			texts:        []string{"Hello"},
			expectedSize: 8,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("bad input"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := newTestEmbeddingsClient(server.URL, tt.expectedSize, 0)
			embeddings, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedTexts() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("EmbedTexts() unexpected error: %v", err)
				return
			}

			if len(embeddings) != tt.wantCount {
				t.Errorf("EmbedTexts() count = %v, want %v", len(embeddings), tt.wantCount)
			}

			for i, emb := range embeddings {
				if len(emb) != tt.expectedSize {
					t.Errorf("EmbedTexts() embedding[%d] size = %v, want %v", i, len(emb), tt.expectedSize)
				}
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_ConvertsFloat64ToFloat32(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := EmbeddingsResponse{
			Data: []EmbeddingData{
				{Embedding: []float64{0.1, 0.2, 0.3}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestEmbeddingsClient(server.URL, 3, 0)
	embeddings, err := client.EmbedTexts(context.Background(), []string{"test"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	want := []float32{0.1, 0.2, 0.3}
	for i, v := range embeddings[0] {
		if v != want[i] {
			t.Errorf("EmbedTexts() embedding[0][%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestEmbeddingsClient_EmbedTexts_ReordersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := EmbeddingsResponse{
			Data: []EmbeddingData{
				{Index: 1, Embedding: []float64{2, 2}},
				{Index: 0, Embedding: []float64{1, 1}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestEmbeddingsClient(server.URL, 2, 0)
	embeddings, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if embeddings[0][0] != 1 || embeddings[1][0] != 2 {
		t.Errorf("EmbedTexts() = %v, want input order", embeddings)
	}
}

func TestEmbeddingsClient_EmbedTexts_Retry(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		retries   int
		wantErr   bool
		wantCalls int32
	}{
		{
			name:      "transient 503 then success",
			statuses:  []int{http.StatusServiceUnavailable, http.StatusOK},
			retries:   2,
			wantCalls: 2,
		},
		{
			name:      "rate limited then success",
			statuses:  []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK},
			retries:   2,
			wantCalls: 3,
		},
		{
			name:      "retries exhausted",
			statuses:  []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusOK},
			retries:   2,
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:      "client error is not retried",
			statuses:  []int{http.StatusUnauthorized, http.StatusOK},
			retries:   2,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "zero retries means single attempt",
			statuses:  []int{http.StatusInternalServerError, http.StatusOK},
			retries:   0,
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(calls.Add(1)) - 1
				status := tt.statuses[min(n, len(tt.statuses)-1)]
				if status != http.StatusOK {
					w.WriteHeader(status)
					return
				}
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: []EmbeddingData{{Embedding: []float64{1, 0}}}})
			}))
			defer server.Close()

			client := newTestEmbeddingsClient(server.URL, 2, tt.retries)
			_, err := client.EmbedTexts(context.Background(), []string{"hello"})
			if (err != nil) != tt.wantErr {
				t.Errorf("EmbedTexts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_CancelledContextNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestEmbeddingsClient(server.URL, 2, 3)
	if _, err := client.EmbedTexts(ctx, []string{"hello"}); err == nil {
		t.Fatal("EmbedTexts() expected error, got nil")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("server called %d times, want 0", got)
	}
}
