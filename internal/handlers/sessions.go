package handlers

import (
	"net/http"
	"time"

	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/storage"
)

// SessionHandler handles the caller's chat sessions.
type SessionHandler struct {
	chatService service.ChatService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(chatService service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// SessionResponse is a chat session summary.
type SessionResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionListResponse lists the caller's sessions, newest first.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// SessionDetailResponse is a session with its messages.
type SessionDetailResponse struct {
	Session  SessionResponse   `json:"session"`
	Messages []MessageResponse `json:"messages"`
}

// DeleteSessionResponse names the session to show next; 0 means none remain.
type DeleteSessionResponse struct {
	NextSessionID int64 `json:"next_session_id"`
}

// List handles GET /api/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	sessions, err := h.chatService.ListSessions(ctx, user.ID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	resp := SessionListResponse{Sessions: make([]SessionResponse, len(sessions))}
	for i, s := range sessions {
		resp.Sessions[i] = toSessionResponse(s)
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	view, err := h.chatService.GetSession(ctx, user.ID, id)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, SessionDetailResponse{
		Session:  toSessionResponse(view.Session),
		Messages: toMessageResponses(view.Messages),
	})
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	next, err := h.chatService.DeleteSession(ctx, user.ID, id)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, DeleteSessionResponse{NextSessionID: next})
}

func toSessionResponse(s storage.Session) SessionResponse {
	return SessionResponse{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
}
