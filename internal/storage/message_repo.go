package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageStore defines the interface for chat message storage.
type MessageStore interface {
	// Append adds a message to the end of a session.
	Append(ctx context.Context, sessionID int64, role MessageRole, content string) (Message, error)
	// ListBySession returns the session's messages, oldest first.
	ListBySession(ctx context.Context, sessionID int64) ([]Message, error)
	// CountBySession returns the number of messages in a session.
	CountBySession(ctx context.Context, sessionID int64) (int, error)
}

// MessageRepo provides methods for chat message operations.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append inserts a message stamped with the current time.
func (r *MessageRepo) Append(ctx context.Context, sessionID int64, role MessageRole, content string) (Message, error) {
	msg := Message{SessionID: sessionID, Role: role, Content: content, CreatedAt: now()}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO chat_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		msg.SessionID, string(msg.Role), msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID, err = result.LastInsertId()
	if err != nil {
		return Message{}, fmt.Errorf("failed to get message id: %w", err)
	}
	return msg, nil
}

// ListBySession returns messages ordered by timestamp, then id.
func (r *MessageRepo) ListBySession(ctx context.Context, sessionID int64) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = ? ORDER BY created_at, id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = MessageRole(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// CountBySession returns the number of messages in the session.
func (r *MessageRepo) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE session_id = ?", sessionID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}
