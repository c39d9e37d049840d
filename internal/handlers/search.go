package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
	"lessonplanner-ai/internal/rag"
	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/storage"
)

// SearchHandler handles the session-driven search endpoint.
type SearchHandler struct {
	chatService service.ChatService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(chatService service.ChatService) *SearchHandler {
	return &SearchHandler{chatService: chatService}
}

// SelectionRequest is the prompt module and model choice of a query.
type SelectionRequest struct {
	PhilosophyID *int64  `json:"philosophy_id" validate:"omitempty,gt=0"`
	PersonaIDs   []int64 `json:"persona_ids" validate:"omitempty,dive,gt=0"`
	VoiceID      *int64  `json:"voice_id" validate:"omitempty,gt=0"`
	ToneIDs      []int64 `json:"tone_ids" validate:"omitempty,dive,gt=0"`
	Model        string  `json:"model" validate:"omitempty,max=64"`
}

// SearchRequest represents the HTTP request payload for a query.
type SearchRequest struct {
	ChatID    int64            `json:"chat_id" validate:"gte=0"`
	NewChat   bool             `json:"new_chat"`
	Query     string           `json:"query" validate:"max=8000"`
	Selection SelectionRequest `json:"selection"`
	TopK      int              `json:"top_k" validate:"gte=0"`
	Tags      []string         `json:"tags" validate:"omitempty,dive,max=50"`
}

// MessageResponse is one chat message.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResponse represents the HTTP response payload for search requests.
type SearchResponse struct {
	SessionID int64             `json:"session_id"`
	Redirect  bool              `json:"redirect"`
	Messages  []MessageResponse `json:"messages"`
	Answer    string            `json:"answer,omitempty"`
	Chunks    []rag.Chunk       `json:"chunks,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Navigate handles GET /api/search?chat_id=&new_chat=.
func (h *SearchHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var chatID int64
	if raw := r.URL.Query().Get("chat_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		chatID = id
	}
	newChat := isTruthy(r.URL.Query().Get("new_chat"))

	res, err := h.chatService.EnterSearch(ctx, user.ID, chatID, newChat)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	h.writeResult(w, r, res)
}

// Query handles POST /api/search.
func (h *SearchHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Convert HTTP request to service request
	svcReq := service.QueryRequest{
		UserID:    user.ID,
		SessionID: req.ChatID,
		NewChat:   req.NewChat,
		Query:     req.Query,
		Selection: prompt.Selection{
			PhilosophyID: req.Selection.PhilosophyID,
			PersonaIDs:   req.Selection.PersonaIDs,
			VoiceID:      req.Selection.VoiceID,
			ToneIDs:      req.Selection.ToneIDs,
		},
		Model: llm.Model(strings.TrimSpace(req.Selection.Model)),
		TopK:  req.TopK,
		Tags:  req.Tags,
	}

	res, err := h.chatService.HandleQuery(ctx, svcReq)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	if res.Failure != nil {
		logger.WarnContext(ctx, "query failed after recording", "session_id", res.SessionID, "error", res.Failure)
	}
	h.writeResult(w, r, res)
}

// writeResult answers a redirect with 303 and a Location, a failed answer
// with the mapped status and the session history, and anything else with 200.
func (h *SearchHandler) writeResult(w http.ResponseWriter, r *http.Request, res service.QueryResult) {
	resp := SearchResponse{
		SessionID: res.SessionID,
		Redirect:  res.Redirect,
		Messages:  toMessageResponses(res.Messages),
		Answer:    res.Answer,
		Chunks:    res.Chunks,
	}

	if res.Redirect {
		w.Header().Set("Location", fmt.Sprintf("/api/search?chat_id=%d", res.SessionID))
		writeJSON(w, r.Context(), http.StatusSeeOther, resp)
		return
	}
	if res.Failure != nil {
		resp.Error = publicMessage(res.Failure)
		writeJSON(w, r.Context(), StatusForError(res.Failure), resp)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, resp)
}

func toMessageResponses(msgs []storage.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return out
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
