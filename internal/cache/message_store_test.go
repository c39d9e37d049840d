package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"lessonplanner-ai/internal/storage"
	"lessonplanner-ai/internal/storage/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeHistory is an in-process History.
type fakeHistory struct {
	entries     map[int64][]storage.Message
	dirty       map[int64]bool
	err         error
	sets        int
	invalidated []int64
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: map[int64][]storage.Message{}, dirty: map[int64]bool{}}
}

func (f *fakeHistory) GetHistory(_ context.Context, id int64) ([]storage.Message, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	m, ok := f.entries[id]
	return m, ok, nil
}

func (f *fakeHistory) SetHistory(_ context.Context, id int64, msgs []storage.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sets++
	f.entries[id] = msgs
	return nil
}

func (f *fakeHistory) Invalidate(_ context.Context, id int64) error {
	f.invalidated = append(f.invalidated, id)
	if f.err != nil {
		return f.err
	}
	delete(f.entries, id)
	f.dirty[id] = true
	return nil
}

func (f *fakeHistory) IsDirty(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.dirty[id], nil
}

func TestMessageStore_ListBySession(t *testing.T) {
	history := []storage.Message{{ID: 1, SessionID: 5, Role: storage.RoleUser, Content: "hi"}}

	tests := []struct {
		name      string
		setup     func(*fakeHistory, *mocks.MockMessageStore)
		wantSets  int
		wantErr   bool
		wantCount int
	}{
		{
			name: "miss loads and caches",
			setup: func(h *fakeHistory, db *mocks.MockMessageStore) {
				db.EXPECT().ListBySession(gomock.Any(), int64(5)).Return(history, nil)
			},
			wantSets:  1,
			wantCount: 1,
		},
		{
			name: "hit skips the database",
			setup: func(h *fakeHistory, db *mocks.MockMessageStore) {
				h.entries[5] = history
			},
			wantCount: 1,
		},
		{
			name: "dirty session is read through without caching",
			setup: func(h *fakeHistory, db *mocks.MockMessageStore) {
				h.entries[5] = []storage.Message{}
				h.dirty[5] = true
				db.EXPECT().ListBySession(gomock.Any(), int64(5)).Return(history, nil)
			},
			wantCount: 1,
		},
		{
			name: "cache outage falls through",
			setup: func(h *fakeHistory, db *mocks.MockMessageStore) {
				h.err = errors.New("connection refused")
				db.EXPECT().ListBySession(gomock.Any(), int64(5)).Return(history, nil)
			},
			wantCount: 1,
		},
		{
			name: "database error is returned",
			setup: func(h *fakeHistory, db *mocks.MockMessageStore) {
				db.EXPECT().ListBySession(gomock.Any(), int64(5)).Return(nil, errors.New("disk I/O error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			db := mocks.NewMockMessageStore(ctrl)
			h := newFakeHistory()
			tt.setup(h, db)

			got, err := NewMessageStore(db, h).ListBySession(context.Background(), 5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListBySession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantCount {
				t.Errorf("ListBySession() returned %d messages, want %d", len(got), tt.wantCount)
			}
			if h.sets != tt.wantSets {
				t.Errorf("cache writes = %d, want %d", h.sets, tt.wantSets)
			}
		})
	}
}

func TestMessageStore_AppendInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockMessageStore(ctrl)
	h := newFakeHistory()
	h.entries[9] = []storage.Message{{ID: 1}}
	store := NewMessageStore(db, h)

	db.EXPECT().Append(gomock.Any(), int64(9), storage.RoleUser, "next").Return(storage.Message{ID: 2, SessionID: 9}, nil)
	if _, err := store.Append(context.Background(), 9, storage.RoleUser, "next"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, ok := h.entries[9]; ok {
		t.Error("cached history survived Append()")
	}

	db.EXPECT().Append(gomock.Any(), int64(9), storage.RoleUser, "fails").Return(storage.Message{}, errors.New("constraint failed"))
	if _, err := store.Append(context.Background(), 9, storage.RoleUser, "fails"); err == nil {
		t.Error("Append() error not returned")
	}
	if len(h.invalidated) != 1 {
		t.Errorf("invalidations = %d, want 1", len(h.invalidated))
	}

	// Cache failures do not fail the write.
	h.err = errors.New("connection refused")
	db.EXPECT().Append(gomock.Any(), int64(9), storage.RoleAssistant, "ok").Return(storage.Message{ID: 3}, nil)
	if _, err := store.Append(context.Background(), 9, storage.RoleAssistant, "ok"); err != nil {
		t.Errorf("Append() with cache outage error = %v", err)
	}

	db.EXPECT().CountBySession(gomock.Any(), int64(9)).Return(3, nil)
	if n, err := store.CountBySession(context.Background(), 9); err != nil || n != 3 {
		t.Errorf("CountBySession() = %d, %v", n, err)
	}
}

func TestMessageStore_ListBySession_ConcurrentAppendNotCached(t *testing.T) {
	ctx := context.Background()
	hc, _ := newTestCache(t)
	ctrl := gomock.NewController(t)
	db := mocks.NewMockMessageStore(ctrl)

	stale := []storage.Message{{ID: 1, SessionID: 9, Role: storage.RoleUser, Content: "hi"}}
	// An append lands after the reader passed the dirty check but before it
	// writes the history back.
	db.EXPECT().ListBySession(gomock.Any(), int64(9)).DoAndReturn(func(ctx context.Context, id int64) ([]storage.Message, error) {
		if err := hc.Invalidate(ctx, id); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
		return stale, nil
	})

	got, err := NewMessageStore(db, hc).ListBySession(ctx, 9)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("ListBySession() returned %d messages, want 1", len(got))
	}
	if _, hit, _ := hc.GetHistory(ctx, 9); hit {
		t.Error("stale history cached after a concurrent append")
	}
}
