package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_module_store.go -package=mocks lessonplanner-ai/internal/storage ModuleStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ModuleStore defines the interface for prompt module storage.
type ModuleStore interface {
	// GetByIDs returns the modules with the given ids. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]PromptModule, error)
	// ListGlobalPhilosophies returns every global philosophy ordered by id.
	ListGlobalPhilosophies(ctx context.Context) ([]PromptModule, error)
	// List returns every module ordered by kind, then title.
	List(ctx context.Context) ([]PromptModule, error)
	// Upsert inserts a module or updates the one with the same kind and file path.
	Upsert(ctx context.Context, module *PromptModule) error
}

// ModuleRepo provides methods for prompt module operations.
// It implements the ModuleStore interface.
type ModuleRepo struct {
	db *sql.DB
}

// NewModuleRepo creates a new ModuleRepo.
func NewModuleRepo(db *sql.DB) *ModuleRepo {
	return &ModuleRepo{db: db}
}

const moduleColumns = "id, kind, title, file_path, is_global, created_at"

// GetByIDs loads modules by id.
func (r *ModuleRepo) GetByIDs(ctx context.Context, ids []int64) ([]PromptModule, error) {
	if len(ids) == 0 {
		return []PromptModule{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx,
		"SELECT "+moduleColumns+" FROM prompt_modules WHERE id IN ("+placeholders+") ORDER BY id",
		args...,
	)
}

// ListGlobalPhilosophies returns the philosophies injected into every prompt.
func (r *ModuleRepo) ListGlobalPhilosophies(ctx context.Context) ([]PromptModule, error) {
	return r.query(ctx,
		"SELECT "+moduleColumns+" FROM prompt_modules WHERE kind = ? AND is_global = 1 ORDER BY id",
		string(KindPhilosophy),
	)
}

// List returns all modules.
func (r *ModuleRepo) List(ctx context.Context) ([]PromptModule, error) {
	return r.query(ctx,
		"SELECT "+moduleColumns+" FROM prompt_modules ORDER BY kind, title, id",
	)
}

// Upsert inserts module or updates title and is_global of the existing row
// with the same (kind, file_path). module.ID is set either way.
func (r *ModuleRepo) Upsert(ctx context.Context, module *PromptModule) error {
	if !module.Kind.Valid() {
		return fmt.Errorf("invalid module kind %q", module.Kind)
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now()
	}
	isGlobal := module.IsGlobal && module.Kind == KindPhilosophy

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO prompt_modules (kind, title, file_path, is_global, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, file_path) DO UPDATE SET
		 title = excluded.title, is_global = excluded.is_global
		 RETURNING id`,
		string(module.Kind), module.Title, module.FilePath, isGlobal, module.CreatedAt,
	).Scan(&module.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert prompt module: %w", err)
	}

	// An update keeps the original creation time.
	if err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM prompt_modules WHERE id = ?", module.ID,
	).Scan(&module.CreatedAt); err != nil {
		return fmt.Errorf("failed to read prompt module: %w", err)
	}
	module.IsGlobal = isGlobal
	return nil
}

func (r *ModuleRepo) query(ctx context.Context, query string, args ...any) ([]PromptModule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt modules: %w", err)
	}
	defer rows.Close()

	modules := []PromptModule{}
	for rows.Next() {
		var m PromptModule
		var kind string
		if err := rows.Scan(&m.ID, &kind, &m.Title, &m.FilePath, &m.IsGlobal, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt module: %w", err)
		}
		m.Kind = ModuleKind(kind)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompt modules: %w", err)
	}
	return modules, nil
}
