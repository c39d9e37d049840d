package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSessionRepo_GetOrCreateEmpty(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	messages := NewMessageRepo(db)

	first, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}
	if first.ID == 0 || first.UserID != 1 || first.Title != "" {
		t.Fatalf("GetOrCreateEmpty() = %+v", first)
	}

	again, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("empty session not reused: got %d, want %d", again.ID, first.ID)
	}

	other, err := sessions.GetOrCreateEmpty(ctx, 2)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}
	if other.ID == first.ID {
		t.Error("users share an empty session")
	}

	if _, err := messages.Append(ctx, first.ID, RoleUser, "hello"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	next, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}
	if next.ID == first.ID {
		t.Error("session with messages reused as empty")
	}
}

func TestSessionRepo_GetOrCreateEmpty_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)

	const callers = 8
	ids := make([]int64, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := sessions.GetOrCreateEmpty(ctx, 42)
			ids[i], errs[i] = s.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("caller %d got session %d, caller 0 got %d", i, ids[i], ids[0])
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM chat_sessions WHERE user_id = 42").Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("sessions for user = %d, want 1", count)
	}
}

func TestSessionRepo_Ownership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	messages := NewMessageRepo(db)

	owned, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}
	if _, err := messages.Append(ctx, owned.ID, RoleUser, "lesson on fractions"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	tests := []struct {
		name      string
		userID    int64
		sessionID int64
		wantErr   error
	}{
		{"owner", 1, owned.ID, nil},
		{"other user", 2, owned.ID, ErrNotFound},
		{"missing session", 1, owned.ID + 100, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sessions.GetOwned(ctx, tt.userID, tt.sessionID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetOwned() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != owned.ID {
				t.Errorf("GetOwned() = %+v", got)
			}
		})
	}

	if err := sessions.DeleteOwned(ctx, 2, owned.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteOwned() by other user error = %v, want ErrNotFound", err)
	}
	msgs, err := messages.ListBySession(ctx, owned.ID)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("messages after refused delete = %v, %v", msgs, err)
	}

	if err := sessions.DeleteOwned(ctx, 1, owned.ID); err != nil {
		t.Fatalf("DeleteOwned() error = %v", err)
	}
	if _, err := sessions.GetOwned(ctx, 1, owned.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOwned() after delete error = %v, want ErrNotFound", err)
	}
	if n, _ := messages.CountBySession(ctx, owned.ID); n != 0 {
		t.Errorf("messages after delete = %d, want 0", n)
	}
}

func TestSessionRepo_ListByUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	messages := NewMessageRepo(db)

	var want []int64
	for i := 0; i < 3; i++ {
		s, err := sessions.GetOrCreateEmpty(ctx, 7)
		if err != nil {
			t.Fatalf("GetOrCreateEmpty() error = %v", err)
		}
		if _, err := messages.Append(ctx, s.ID, RoleUser, "q"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		want = append([]int64{s.ID}, want...)
	}
	if _, err := sessions.GetOrCreateEmpty(ctx, 8); err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}

	got, err := sessions.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ListByUser() returned %d sessions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("ListByUser()[%d] = %d, want %d", i, got[i].ID, want[i])
		}
	}

	none, err := sessions.ListByUser(ctx, 99)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("ListByUser() for unknown user = %v, %v", none, err)
	}
}

func TestSessionRepo_TitleAndEmptiness(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)

	s, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}

	empty, err := sessions.IsEmpty(ctx, s.ID)
	if err != nil || !empty {
		t.Fatalf("IsEmpty() = %v, %v; want true", empty, err)
	}

	set, err := sessions.SetTitleIfEmpty(ctx, s.ID, "Plan a unit")
	if err != nil || !set {
		t.Fatalf("SetTitleIfEmpty() = %v, %v; want true", set, err)
	}
	set, err = sessions.SetTitleIfEmpty(ctx, s.ID, "Something else")
	if err != nil || set {
		t.Fatalf("second SetTitleIfEmpty() = %v, %v; want false", set, err)
	}

	got, err := sessions.GetOwned(ctx, 1, s.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if got.Title != "Plan a unit" {
		t.Errorf("Title = %q, want %q", got.Title, "Plan a unit")
	}

	empty, err = sessions.IsEmpty(ctx, s.ID)
	if err != nil || empty {
		t.Errorf("IsEmpty() after title = %v, %v; want false", empty, err)
	}
	if _, err := sessions.IsEmpty(ctx, s.ID+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("IsEmpty() missing session error = %v, want ErrNotFound", err)
	}
}

func TestMessageRepo_AppendAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	messages := NewMessageRepo(db)

	s, err := sessions.GetOrCreateEmpty(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreateEmpty() error = %v", err)
	}

	turns := []struct {
		role    MessageRole
		content string
	}{
		{RoleUser, "What is photosynthesis?"},
		{RoleAssistant, "Plants turn light into energy."},
		{RoleUser, "Make it a quiz."},
	}
	for _, turn := range turns {
		msg, err := messages.Append(ctx, s.ID, turn.role, turn.content)
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if msg.ID == 0 || msg.CreatedAt.IsZero() {
			t.Errorf("Append() = %+v", msg)
		}
	}

	got, err := messages.ListBySession(ctx, s.ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("ListBySession() returned %d messages, want %d", len(got), len(turns))
	}
	for i, turn := range turns {
		if got[i].Role != turn.role || got[i].Content != turn.content {
			t.Errorf("message %d = %+v, want %s %q", i, got[i], turn.role, turn.content)
		}
	}

	n, err := messages.CountBySession(ctx, s.ID)
	if err != nil || n != 3 {
		t.Errorf("CountBySession() = %d, %v; want 3", n, err)
	}

	if _, err := messages.Append(ctx, s.ID+50, RoleUser, "orphan"); err == nil {
		t.Error("Append() to a missing session expected error")
	}
}
