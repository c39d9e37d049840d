package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks lessonplanner-ai/internal/storage SessionStore,MessageStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lessonplanner-ai/internal/apperr"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = apperr.ErrNotFound

// SessionStore defines the interface for chat session storage.
// Every lookup is scoped to the owning user.
type SessionStore interface {
	// GetOrCreateEmpty returns the user's empty session, creating one when
	// none exists. Concurrent calls for one user yield the same session.
	GetOrCreateEmpty(ctx context.Context, userID int64) (Session, error)
	// GetOwned returns ErrNotFound when the session is missing or owned by
	// another user.
	GetOwned(ctx context.Context, userID, sessionID int64) (Session, error)
	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Session, error)
	// DeleteOwned deletes the session and its messages. Returns ErrNotFound
	// when the session is missing or owned by another user.
	DeleteOwned(ctx context.Context, userID, sessionID int64) error
	// SetTitleIfEmpty sets the title unless one is already set.
	SetTitleIfEmpty(ctx context.Context, sessionID int64, title string) (bool, error)
	// IsEmpty reports whether the session has no title and no messages.
	IsEmpty(ctx context.Context, sessionID int64) (bool, error)
}

// SessionRepo provides methods for chat session operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const emptySessionQuery = `SELECT s.id, s.user_id, s.title, s.created_at FROM chat_sessions s
	WHERE s.user_id = ? AND s.title = ''
	AND NOT EXISTS (SELECT 1 FROM chat_messages m WHERE m.session_id = s.id)
	ORDER BY s.created_at DESC, s.id DESC LIMIT 1`

// GetOrCreateEmpty runs the lookup and the insert in one IMMEDIATE
// transaction so a second caller waits and then finds the first one's session.
func (r *SessionRepo) GetOrCreateEmpty(ctx context.Context, userID int64) (Session, error) {
	var session Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, emptySessionQuery, userID).
			Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to query empty session: %w", err)
		}

		session = Session{UserID: userID, CreatedAt: now()}
		result, err := tx.ExecContext(ctx,
			"INSERT INTO chat_sessions (user_id, title, created_at) VALUES (?, '', ?)",
			userID, session.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		session.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get session id: %w", err)
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// GetOwned gets a session by ID for its owner.
func (r *SessionRepo) GetOwned(ctx context.Context, userID, sessionID int64) (Session, error) {
	var session Session
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, created_at FROM chat_sessions WHERE id = ? AND user_id = ?",
		sessionID, userID,
	).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// ListByUser returns the user's sessions ordered newest first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, title, created_at FROM chat_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// DeleteOwned deletes a session owned by userID. Messages are removed by the
// foreign key cascade.
func (r *SessionRepo) DeleteOwned(ctx context.Context, userID, sessionID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM chat_sessions WHERE id = ? AND user_id = ?",
		sessionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTitleIfEmpty sets the session title once.
func (r *SessionRepo) SetTitleIfEmpty(ctx context.Context, sessionID int64, title string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE chat_sessions SET title = ? WHERE id = ? AND title = ''",
		title, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set session title: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check session title: %w", err)
	}
	return n > 0, nil
}

// IsEmpty reports whether the session has neither a title nor messages.
func (r *SessionRepo) IsEmpty(ctx context.Context, sessionID int64) (bool, error) {
	var empty bool
	err := r.db.QueryRowContext(ctx,
		`SELECT s.title = '' AND NOT EXISTS (SELECT 1 FROM chat_messages m WHERE m.session_id = s.id)
		 FROM chat_sessions s WHERE s.id = ?`,
		sessionID,
	).Scan(&empty)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return empty, nil
}
