package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"lessonplanner-ai/internal/contextutil"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	MaxRetries   int
	client       *http.Client
	newBackOff   func() backoff.BackOff
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from VECTOR_SIZE config).
// All embeddings returned by EmbedTexts will be validated against this size.
// Transient failures are retried up to maxRetries times with exponential backoff.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize, maxRetries int, timeout time.Duration) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		MaxRetries:   maxRetries,
		client:       &http.Client{Timeout: timeout},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text, in input order.
// Validates that all returned vectors match the expected size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	logger := contextutil.LoggerFromContext(ctx)
	var result [][]float32
	attempt := 0

	operation := func() error {
		attempt++
		vecs, err := c.embedOnce(ctx, texts)
		if err == nil {
			result = vecs
			return nil
		}
		if !isTransient(ctx, err) {
			return backoff.Permanent(err)
		}
		logger.WarnContext(ctx, "embedding request failed",
			"attempt", attempt,
			"max_retries", c.MaxRetries,
			"error", err,
		)
		return err
	}

	var b backoff.BackOff = c.newBackOff()
	b = backoff.WithMaxRetries(b, uint64(max(c.MaxRetries, 0)))
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}

	if attempt > 1 {
		logger.DebugContext(ctx, "embedding request succeeded after retry", slog.Int("attempts", attempt))
	}
	return result, nil
}

func (c *EmbeddingsClient) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	endpoint := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Providers may return data out of order; honor the index field when it
	// forms a permutation of the inputs.
	order := make([]int, len(texts))
	seen := make([]bool, len(texts))
	byIndex := true
	for i, data := range embeddingsResp.Data {
		order[i] = i
		if data.Index < 0 || data.Index >= len(texts) || seen[data.Index] {
			byIndex = false
			continue
		}
		seen[data.Index] = true
	}
	if byIndex {
		for i, data := range embeddingsResp.Data {
			order[i] = data.Index
		}
	}

	result := make([][]float32, len(texts))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", order[i], len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[order[i]] = vec
	}

	return result, nil
}

// isTransient reports whether err is a network failure, 429 or 5xx.
// Cancellation by the caller is never retried.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
