package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks lessonplanner-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Create inserts the document and links its tags in one transaction.
	Create(ctx context.Context, doc *Document) error
	// Get returns the document with its content and tags.
	Get(ctx context.Context, id string) (Document, error)
	// List returns every document, newest first, without content.
	List(ctx context.Context) ([]Document, error)
	// Delete removes the document and its tag links.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts doc. doc.ID must be set. A zero CreatedAt is stamped with the
// current time.
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now()
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO documents (id, name, file_path, content_type, content, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			doc.ID, doc.Name, doc.FilePath, doc.ContentType, doc.Content, doc.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}

		for _, name := range doc.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tags (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name,
			); err != nil {
				return fmt.Errorf("failed to insert tag %q: %w", name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO document_tags (document_id, tag_id)
				 SELECT ?, id FROM tags WHERE name = ?`,
				doc.ID, name,
			); err != nil {
				return fmt.Errorf("failed to link tag %q: %w", name, err)
			}
		}
		return nil
	})
}

// Get gets a document by ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) Get(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, file_path, content_type, content, created_at FROM documents WHERE id = ?", id,
	).Scan(&doc.ID, &doc.Name, &doc.FilePath, &doc.ContentType, &doc.Content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to query document: %w", err)
	}

	tags, err := r.tagsByDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc.Tags = tags[id]
	return doc, nil
}

// List returns all documents ordered newest first. Content is left empty.
func (r *DocumentRepo) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, file_path, content_type, created_at FROM documents ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.FilePath, &doc.ContentType, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	tags, err := r.tagsByDocument(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Tags = tags[docs[i].ID]
	}
	return docs, nil
}

// Delete deletes a document by ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// tagsByDocument maps document IDs to sorted tag names. An empty id loads
// the tags of every document.
func (r *DocumentRepo) tagsByDocument(ctx context.Context, id string) (map[string][]string, error) {
	query := `SELECT dt.document_id, t.name FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id`
	var args []any
	if id != "" {
		query += " WHERE dt.document_id = ?"
		args = append(args, id)
	}
	query += " ORDER BY t.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var docID, name string
		if err := rows.Scan(&docID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags[docID] = append(tags[docID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}
