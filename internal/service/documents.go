package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_indexer.go -package=mocks lessonplanner-ai/internal/service Indexer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks -mock_names=DocumentService=MockDocumentService lessonplanner-ai/internal/service DocumentService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/extract"
	"lessonplanner-ai/internal/indexer"
	"lessonplanner-ai/internal/storage"
)

const maxTagLength = 50

// Indexer writes document chunks to the vector index.
type Indexer interface {
	IndexDocument(ctx context.Context, doc indexer.Document) (indexer.IndexResult, error)
	Reindex(ctx context.Context, doc indexer.Document) (indexer.IndexResult, error)
	IndexAll(ctx context.Context, docs []indexer.Document) ([]indexer.IndexResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// FileStore keeps uploaded files under the media root.
type FileStore interface {
	SaveDocument(documentID, fileName string, r io.Reader) (string, error)
	Open(relPath string) (*os.File, error)
	Remove(relPath string) error
}

// UploadRequest represents a document upload in the domain layer.
type UploadRequest struct {
	FileName    string
	ContentType string
	Body        io.Reader
	Tags        []string
}

// UploadResult is the stored document and its indexing summary.
type UploadResult struct {
	Document storage.Document
	Index    indexer.IndexResult
}

// DocumentService manages the document library and keeps the vector index in
// step with it.
type DocumentService interface {
	// Upload stores, extracts and indexes a file, then records it. Nothing is
	// kept when any step fails.
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	// Reindex re-chunks and re-embeds a stored document.
	Reindex(ctx context.Context, id string) (indexer.IndexResult, error)
	// ReindexAll reindexes every stored document.
	ReindexAll(ctx context.Context) ([]indexer.IndexResult, error)
	// Delete removes a document's index entries, record and file.
	Delete(ctx context.Context, id string) error
	// List returns every document, newest first.
	List(ctx context.Context) ([]storage.Document, error)
}

type documentService struct {
	docs    storage.DocumentStore
	files   FileStore
	indexer Indexer
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs storage.DocumentStore, files FileStore, ix Indexer) DocumentService {
	return &documentService{docs: docs, files: files, indexer: ix}
}

// Upload processes an uploaded file.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.FileName) == "" {
		return UploadResult{}, apperr.Invalid("file", "file name is required")
	}
	if req.Body == nil {
		return UploadResult{}, apperr.Invalid("file", "file is required")
	}
	tags, err := NormalizeTags(req.Tags)
	if err != nil {
		return UploadResult{}, err
	}

	id := uuid.NewString()
	relPath, err := s.files.SaveDocument(id, req.FileName, req.Body)
	if err != nil {
		return UploadResult{}, apperr.WrapError(err, "failed to store upload")
	}

	text, err := s.extract(relPath, req.FileName, req.ContentType)
	if err != nil {
		logger.WarnContext(ctx, "failed to extract document", "file", req.FileName, "error", err)
		s.removeFile(ctx, relPath)
		return UploadResult{}, err
	}

	res, err := s.indexer.IndexDocument(ctx, indexer.Document{ID: id, Name: req.FileName, Text: text, Tags: tags})
	if err != nil {
		logger.ErrorContext(ctx, "failed to index document", "document_id", id, "error", err)
		var partial *indexer.IndexError
		if errors.As(err, &partial) {
			s.removeIndex(ctx, id)
		}
		s.removeFile(ctx, relPath)
		return UploadResult{}, err
	}

	doc := storage.Document{
		ID:          id,
		Name:        req.FileName,
		FilePath:    relPath,
		ContentType: req.ContentType,
		Content:     text,
		Tags:        tags,
	}
	if err := s.docs.Create(ctx, &doc); err != nil {
		logger.ErrorContext(ctx, "failed to persist document", "document_id", id, "error", err)
		s.removeIndex(ctx, id)
		s.removeFile(ctx, relPath)
		return UploadResult{}, apperr.WrapError(err, "failed to persist document")
	}

	logger.InfoContext(ctx, "document uploaded",
		"document_id", id,
		"file", req.FileName,
		"chunks", res.Chunks,
		"tags", len(tags),
	)
	return UploadResult{Document: doc, Index: res}, nil
}

// Reindex reindexes one stored document.
func (s *documentService) Reindex(ctx context.Context, id string) (indexer.IndexResult, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return indexer.IndexResult{}, err
	}
	return s.indexer.Reindex(ctx, toIndexerDocument(doc))
}

// ReindexAll reindexes the whole library. Failed documents are reported in
// the joined error; the others are still reindexed.
func (s *documentService) ReindexAll(ctx context.Context) ([]indexer.IndexResult, error) {
	list, err := s.docs.List(ctx)
	if err != nil {
		return nil, apperr.WrapError(err, "failed to list documents")
	}

	docs := make([]indexer.Document, 0, len(list))
	for _, d := range list {
		full, err := s.docs.Get(ctx, d.ID)
		if err != nil {
			return nil, apperr.WrapError(err, "failed to load document "+d.ID)
		}
		docs = append(docs, toIndexerDocument(full))
	}
	return s.indexer.IndexAll(ctx, docs)
}

// Delete removes the document from the index first so retrieval never returns
// chunks of a deleted document.
func (s *documentService) Delete(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.indexer.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return apperr.WrapError(err, "failed to delete document")
	}
	s.removeFile(ctx, doc.FilePath)

	logger.InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}

// List returns the document library.
func (s *documentService) List(ctx context.Context) ([]storage.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, apperr.WrapError(err, "failed to list documents")
	}
	return docs, nil
}

func (s *documentService) extract(relPath, fileName, contentType string) (string, error) {
	f, err := s.files.Open(relPath)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrExtraction, "open "+fileName, err)
	}
	defer f.Close()
	return extract.Extract(f, fileName, contentType)
}

func (s *documentService) removeIndex(ctx context.Context, id string) {
	if err := s.indexer.DeleteDocument(ctx, id); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to roll back index entries", "document_id", id, "error", err)
	}
}

func (s *documentService) removeFile(ctx context.Context, relPath string) {
	if relPath == "" {
		return
	}
	if err := s.files.Remove(relPath); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove stored file", "path", relPath, "error", err)
	}
}

// NormalizeTags trims, drops empty names and removes duplicates, keeping
// first occurrence.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLength {
			return nil, apperr.Invalid("tags", fmt.Sprintf("tag %q is longer than %d characters", t, maxTagLength))
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func toIndexerDocument(d storage.Document) indexer.Document {
	return indexer.Document{ID: d.ID, Name: d.Name, Text: d.Content, Tags: d.Tags}
}
