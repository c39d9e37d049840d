package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
	"lessonplanner-ai/internal/vectorstore"
)

const (
	// DefaultTopK is used when a request does not set TopK.
	DefaultTopK = 5
	// MaxTopK caps TopK.
	MaxTopK = 20

	defaultTemperature = 0.7
)

// Retriever is the read side of the vector index.
type Retriever interface {
	Query(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Match, error)
}

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Answer embeds the query, retrieves chunks, composes the prompt and
	// completes it. It makes a single attempt at each upstream call.
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)
}

// Options configures an engine. Zero timeouts leave the caller's deadline in
// charge.
type Options struct {
	DefaultTopK       int
	EmbeddingTimeout  time.Duration
	IndexTimeout      time.Duration
	CompletionTimeout time.Duration
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder  llm.Embedder
	retriever Retriever
	completer llm.Completer
	composer  *prompt.Composer
	opts      Options
}

// NewEngine creates a new RAG engine.
func NewEngine(
	embedder llm.Embedder,
	retriever Retriever,
	completer llm.Completer,
	composer *prompt.Composer,
	opts Options,
) Engine {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = DefaultTopK
	}
	if opts.DefaultTopK > MaxTopK {
		opts.DefaultTopK = MaxTopK
	}
	return &ragEngine{
		embedder:  embedder,
		retriever: retriever,
		completer: completer,
		composer:  composer,
		opts:      opts,
	}
}

// Answer answers a query using RAG.
func (e *ragEngine) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return AnswerResponse{}, apperr.Invalid("query", "cannot be empty")
	}

	model := req.Model
	if model == "" {
		model = llm.DefaultModel
	}
	if !model.Valid() {
		return AnswerResponse{}, apperr.Invalid("model", fmt.Sprintf("unsupported model %q", req.Model))
	}

	k := req.TopK
	if k < 0 {
		return AnswerResponse{}, apperr.Invalid("top_k", "must not be negative")
	}
	if k == 0 {
		k = e.opts.DefaultTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}

	logger.InfoContext(ctx, "RAG query started", "query_length", len(query), "k", k, "model", model, "tags", req.Tags)

	queryVector, err := e.embedQuery(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return AnswerResponse{}, err
	}

	matches, err := e.retrieve(ctx, queryVector, k, vectorstore.Filter{Tags: req.Tags})
	if err != nil {
		logger.ErrorContext(ctx, "failed to query vector index", "error", err)
		return AnswerResponse{}, err
	}

	logger.InfoContext(ctx, "vector search completed", "results_count", len(matches), "k_requested", k)
	if len(matches) > 0 {
		topScores := make([]float32, 0, 3)
		for i := 0; i < len(matches) && i < 3; i++ {
			topScores = append(topScores, matches[i].Score)
		}
		logger.DebugContext(ctx, "top search results", "top_3_scores", topScores)
	}

	chunks := make([]Chunk, len(matches))
	promptChunks := make([]prompt.Chunk, len(matches))
	for i, m := range matches {
		chunks[i] = Chunk{
			Text:         m.Text,
			Score:        m.Score,
			DocumentID:   m.DocumentID,
			DocumentName: m.DocumentName,
			ChunkIndex:   m.ChunkIndex,
		}
		promptChunks[i] = prompt.Chunk{DocumentName: m.DocumentName, Text: m.Text}
	}

	p := e.composer.Compose(query, promptChunks, req.Modules)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: p.System},
		{Role: llm.RoleUser, Content: p.User},
	}
	logger.DebugContext(ctx, "sending request to LLM",
		"system_prompt_length", len(p.System),
		"user_message_length", len(p.User),
	)

	answer, err := e.complete(ctx, messages, model)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AnswerResponse{}, err
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(chunks), "answer_length", len(answer))
	return AnswerResponse{Answer: answer, Chunks: chunks, Model: model}, nil
}

func (e *ragEngine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, e.opts.EmbeddingTimeout)
	defer cancel()

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEmbeddingProvider, "embed query", err)
	}
	if len(embeddings) != 1 || len(embeddings[0]) == 0 {
		return nil, apperr.Wrap(apperr.ErrEmbeddingProvider, "embed query",
			fmt.Errorf("expected 1 non-empty embedding, got %d", len(embeddings)))
	}
	return embeddings[0], nil
}

func (e *ragEngine) retrieve(ctx context.Context, vector []float32, k int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	ctx, cancel := withTimeout(ctx, e.opts.IndexTimeout)
	defer cancel()

	matches, err := e.retriever.Query(ctx, vector, k, filter)
	if err != nil {
		if errors.Is(err, apperr.ErrIndexUnavailable) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ErrIndexUnavailable, "query index", err)
	}
	return matches, nil
}

func (e *ragEngine) complete(ctx context.Context, messages []llm.Message, model llm.Model) (string, error) {
	ctx, cancel := withTimeout(ctx, e.opts.CompletionTimeout)
	defer cancel()

	answer, err := e.completer.ChatWithMessages(ctx, messages, llm.ChatParams{
		Model:       model,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrCompletionProvider, "complete", err)
	}
	return answer, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
