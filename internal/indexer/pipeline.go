package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/vectorstore"
)

const (
	defaultBatchSize   = 16
	defaultConcurrency = 4
)

// ChunkIndex is the write side of the vector index.
type ChunkIndex interface {
	Replace(ctx context.Context, src vectorstore.Source, entries []vectorstore.Entry) (int, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Options tunes embedding fan-out.
type Options struct {
	// BatchSize is the number of chunks per embedding request.
	BatchSize int
	// Concurrency bounds in-flight embedding requests.
	Concurrency int
}

// Pipeline chunks documents, embeds the chunks and writes them to the index.
type Pipeline struct {
	chunker     *Chunker
	embedder    llm.Embedder
	index       ChunkIndex
	batchSize   int
	concurrency int
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(chunker *Chunker, embedder llm.Embedder, index ChunkIndex, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Pipeline{
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
	}
}

// IndexDocument replaces the document's chunks in the index.
//
// Whitespace-only text fails with apperr.ErrEmptyDocument and embedding
// failures with apperr.ErrEmbeddingProvider; in both cases the index is not
// touched. A write that stops part way returns *IndexError.
func (p *Pipeline) IndexDocument(ctx context.Context, doc Document) (IndexResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(doc.Text) == "" {
		return IndexResult{}, fmt.Errorf("%w: %s", apperr.ErrEmptyDocument, doc.Name)
	}

	chunks := p.chunker.Split(doc.Text)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.embed(ctx, texts)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed chunks", "document_id", doc.ID, "chunks", len(chunks), "error", err)
		return IndexResult{}, apperr.Wrap(apperr.ErrEmbeddingProvider, "embed chunks", err)
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = vectorstore.Entry{ChunkIndex: chunk.Index, Text: chunk.Text, Vector: vectors[i]}
	}

	src := vectorstore.Source{DocumentID: doc.ID, DocumentName: doc.Name, Tags: doc.Tags}
	written, err := p.index.Replace(ctx, src, entries)
	if err != nil {
		if written > 0 {
			return IndexResult{}, &IndexError{DocumentID: doc.ID, Indexed: written, Total: len(entries), Err: err}
		}
		return IndexResult{}, err
	}

	result := IndexResult{
		DocumentID: doc.ID,
		Chunks:     written,
		TokenStats: chunkTokenStats(chunks),
	}
	logger.InfoContext(ctx, "indexed document",
		"document_id", doc.ID,
		"name", doc.Name,
		"chunks", result.Chunks,
		"max_tokens", result.TokenStats.Max,
	)
	return result, nil
}

// Reindex re-chunks and re-embeds stored content. Running it twice leaves the
// same set of chunks.
func (p *Pipeline) Reindex(ctx context.Context, doc Document) (IndexResult, error) {
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "reindexing document", "document_id", doc.ID)
	return p.IndexDocument(ctx, doc)
}

// IndexAll reindexes every document. Errors for individual documents are
// logged but don't stop the run.
func (p *Pipeline) IndexAll(ctx context.Context, docs []Document) ([]IndexResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting indexing", "total_documents", len(docs))

	var results []IndexResult
	var errs []error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.IndexDocument(ctx, doc)
		if err != nil {
			logger.ErrorContext(ctx, "failed to index document", "document_id", doc.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
			continue
		}
		results = append(results, res)
	}

	logger.InfoContext(ctx, "indexing completed", "total_documents", len(docs), "success", len(results), "errors", len(errs))
	return results, errors.Join(errs...)
}

// DeleteDocument removes the document's chunks from the index.
func (p *Pipeline) DeleteDocument(ctx context.Context, documentID string) error {
	return p.index.DeleteDocument(ctx, documentID)
}

// embed requests embeddings in batches with bounded concurrency and returns
// them in input order.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		g.Go(func() error {
			batch, err := p.embedder.EmbedTexts(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
