package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lessonplanner-ai/internal/storage"
)

// HistoryCache stores session message history in Redis. A short-lived dirty
// marker set on every write keeps readers from caching a history that a
// concurrent write has already invalidated.
type HistoryCache struct {
	client         *redis.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

// NewHistoryCache creates a cache. Non-positive TTLs select 60s and 5s.
func NewHistoryCache(client *redis.Client, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

// GetHistory returns the cached messages and whether the key was present.
func (c *HistoryCache) GetHistory(ctx context.Context, sessionID int64) ([]storage.Message, bool, error) {
	raw, err := c.client.Get(ctx, historyKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var messages []storage.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, nil
}

// SetHistory caches messages for the history TTL. The write is skipped when
// the session is marked dirty, including a mark set while the write is in
// flight, so a reader that loaded history before a concurrent append never
// caches the stale copy.
func (c *HistoryCache) SetHistory(ctx context.Context, sessionID int64, messages []storage.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}

	dirty := dirtyKey(sessionID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, dirty).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, historyKey(sessionID), payload, c.historyTTL)
			return nil
		})
		return err
	}, dirty)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

// Invalidate marks the session dirty and drops its cached history.
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dirtyKey(sessionID), "1", c.dirtyMarkerTTL)
		pipe.Del(ctx, historyKey(sessionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate history failed: %w", err)
	}
	return nil
}

// IsDirty reports whether the session was written to within the marker TTL.
func (c *HistoryCache) IsDirty(ctx context.Context, sessionID int64) (bool, error) {
	exists, err := c.client.Exists(ctx, dirtyKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func historyKey(sessionID int64) string {
	return fmt.Sprintf("lessonplanner:history:%d", sessionID)
}

func dirtyKey(sessionID int64) string {
	return fmt.Sprintf("lessonplanner:history:dirty:%d", sessionID)
}
