package cache

import (
	"context"

	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/storage"
)

// History is the cache consulted by MessageStore.
type History interface {
	GetHistory(ctx context.Context, sessionID int64) ([]storage.Message, bool, error)
	SetHistory(ctx context.Context, sessionID int64, messages []storage.Message) error
	Invalidate(ctx context.Context, sessionID int64) error
	IsDirty(ctx context.Context, sessionID int64) (bool, error)
}

// MessageStore serves session history from the cache and invalidates it on
// every append. Cache failures are logged and fall through to the database.
type MessageStore struct {
	next  storage.MessageStore
	cache History
}

var _ storage.MessageStore = (*MessageStore)(nil)

// NewMessageStore wraps next with cache.
func NewMessageStore(next storage.MessageStore, cache History) *MessageStore {
	return &MessageStore{next: next, cache: cache}
}

// Append writes through and invalidates the session's cached history.
func (s *MessageStore) Append(ctx context.Context, sessionID int64, role storage.MessageRole, content string) (storage.Message, error) {
	msg, err := s.next.Append(ctx, sessionID, role, content)
	if err != nil {
		return msg, err
	}
	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to invalidate history cache", "session_id", sessionID, "error", err)
	}
	return msg, nil
}

// ListBySession returns cached history when it is clean, otherwise loads it
// from the database and caches it.
func (s *MessageStore) ListBySession(ctx context.Context, sessionID int64) ([]storage.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)

	dirty, err := s.cache.IsDirty(ctx, sessionID)
	if err != nil {
		logger.WarnContext(ctx, "failed to check history cache", "session_id", sessionID, "error", err)
		dirty = true
	}
	if !dirty {
		cached, hit, err := s.cache.GetHistory(ctx, sessionID)
		if err != nil {
			logger.WarnContext(ctx, "failed to read history cache", "session_id", sessionID, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	messages, err := s.next.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !dirty {
		if err := s.cache.SetHistory(ctx, sessionID, messages); err != nil {
			logger.WarnContext(ctx, "failed to write history cache", "session_id", sessionID, "error", err)
		}
	}
	return messages, nil
}

// CountBySession is not cached.
func (s *MessageStore) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	return s.next.CountBySession(ctx, sessionID)
}
