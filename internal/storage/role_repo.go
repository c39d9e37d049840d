package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_role_store.go -package=mocks lessonplanner-ai/internal/storage RoleStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RoleStore defines the interface for user role storage.
type RoleStore interface {
	// GetRole returns ErrNotFound when the user has no role.
	GetRole(ctx context.Context, userID int64) (Role, error)
	// SetRole assigns a role, replacing any previous one.
	SetRole(ctx context.Context, userID int64, role Role) error
}

// RoleRepo provides methods for user role operations.
// It implements the RoleStore interface.
type RoleRepo struct {
	db *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// GetRole gets the user's role.
func (r *RoleRepo) GetRole(ctx context.Context, userID int64) (Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx, "SELECT role FROM user_roles WHERE user_id = ?", userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query role: %w", err)
	}
	return Role(role), nil
}

// SetRole upserts the user's role.
func (r *RoleRepo) SetRole(ctx context.Context, userID int64, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET role = excluded.role`,
		userID, string(role),
	); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}
