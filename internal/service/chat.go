package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answerer.go -package=mocks lessonplanner-ai/internal/service Answerer,ModuleResolver
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService lessonplanner-ai/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
	"lessonplanner-ai/internal/rag"
	"lessonplanner-ai/internal/storage"
)

const titleWords = 6

// Answerer answers a query from retrieved context.
// This interface is defined from the service layer's perspective (consumer-first).
type Answerer interface {
	Answer(ctx context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error)
}

// ModuleResolver loads the prompt modules named by a selection.
type ModuleResolver interface {
	Resolve(ctx context.Context, sel prompt.Selection) (prompt.Modules, error)
}

// QueryRequest represents a search page request in the domain layer.
type QueryRequest struct {
	UserID int64
	// SessionID is the session the request targets; 0 means none.
	SessionID int64
	NewChat   bool
	Query     string
	Selection prompt.Selection
	// Model is the completion model; empty selects llm.DefaultModel.
	Model llm.Model
	TopK  int
	// Tags optionally restricts retrieval to tagged documents.
	Tags []string
}

// QueryResult is the outcome of HandleQuery.
type QueryResult struct {
	SessionID int64
	// Redirect is set when the caller should navigate to SessionID instead of
	// rendering a result.
	Redirect bool
	Messages []storage.Message
	Answer   string
	Chunks   []rag.Chunk
	// Failure holds the answer error when the user message was recorded but
	// no answer could be produced.
	Failure error
}

// SessionView is a session with its messages.
type SessionView struct {
	Session  storage.Session
	Messages []storage.Message
}

// ChatService provides the session-driven search flow.
type ChatService interface {
	// HandleQuery applies the session rules to a search request and answers
	// the query when one is present.
	HandleQuery(ctx context.Context, req QueryRequest) (QueryResult, error)
	// EnterSearch is HandleQuery without a query.
	EnterSearch(ctx context.Context, userID, sessionID int64, newChat bool) (QueryResult, error)
	// DeleteSession deletes an owned session and returns the newest remaining
	// session id, or 0 when none remain.
	DeleteSession(ctx context.Context, userID, sessionID int64) (int64, error)
	// ListSessions returns the user's sessions, newest first.
	ListSessions(ctx context.Context, userID int64) ([]storage.Session, error)
	// GetSession returns an owned session with its messages.
	GetSession(ctx context.Context, userID, sessionID int64) (SessionView, error)
}

// chatService implements ChatService.
type chatService struct {
	sessions storage.SessionStore
	messages storage.MessageStore
	resolver ModuleResolver
	answerer Answerer
}

// NewChatService creates a new ChatService.
func NewChatService(sessions storage.SessionStore, messages storage.MessageStore, resolver ModuleResolver, answerer Answerer) ChatService {
	return &chatService{
		sessions: sessions,
		messages: messages,
		resolver: resolver,
		answerer: answerer,
	}
}

// HandleQuery processes a search request.
func (s *chatService) HandleQuery(ctx context.Context, req QueryRequest) (QueryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.SessionID == 0 {
		return s.redirectToEmpty(ctx, req.UserID)
	}

	session, err := s.ownedSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		return QueryResult{}, err
	}

	if req.NewChat {
		empty, err := s.sessions.IsEmpty(ctx, session.ID)
		if err != nil {
			return QueryResult{}, apperr.WrapError(err, "failed to check session")
		}
		if empty {
			return QueryResult{SessionID: session.ID, Redirect: true}, nil
		}
		return s.redirectToEmpty(ctx, req.UserID)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		msgs, err := s.messages.ListBySession(ctx, session.ID)
		if err != nil {
			return QueryResult{}, apperr.WrapError(err, "failed to load messages")
		}
		return QueryResult{SessionID: session.ID, Messages: msgs}, nil
	}

	// Validate everything the answer depends on before recording anything.
	if req.Model != "" && !req.Model.Valid() {
		logger.WarnContext(ctx, "unsupported model in query request", "model", req.Model)
		return QueryResult{}, apperr.Invalid("model", fmt.Sprintf("unsupported model %q", req.Model))
	}
	if req.TopK < 0 {
		return QueryResult{}, apperr.Invalid("top_k", "must not be negative")
	}
	mods, err := s.resolver.Resolve(ctx, req.Selection)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve prompt modules", "error", err)
		return QueryResult{}, err
	}

	first, err := s.opensSession(ctx, session)
	if err != nil {
		return QueryResult{}, err
	}
	if _, err := s.messages.Append(ctx, session.ID, storage.RoleUser, query); err != nil {
		return QueryResult{}, apperr.WrapError(err, "failed to record user message")
	}
	if first {
		if _, err := s.sessions.SetTitleIfEmpty(ctx, session.ID, DeriveTitle(query)); err != nil {
			return QueryResult{}, apperr.WrapError(err, "failed to set session title")
		}
	}

	resp, answerErr := s.answerer.Answer(ctx, rag.AnswerRequest{
		Query:   query,
		TopK:    req.TopK,
		Model:   req.Model,
		Modules: mods,
		Tags:    req.Tags,
	})
	if answerErr == nil {
		if _, err := s.messages.Append(ctx, session.ID, storage.RoleAssistant, resp.Answer); err != nil {
			return QueryResult{}, apperr.WrapError(err, "failed to record assistant message")
		}
	} else {
		logger.ErrorContext(ctx, "failed to answer query", "session_id", session.ID, "error", answerErr)
	}

	msgs, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return QueryResult{}, apperr.WrapError(err, "failed to load messages")
	}

	result := QueryResult{SessionID: session.ID, Messages: msgs}
	if answerErr != nil {
		result.Failure = answerErr
		return result, nil
	}

	logger.InfoContext(ctx, "query answered",
		"session_id", session.ID,
		"query_length", len(query),
		"answer_length", len(resp.Answer),
		"chunks", len(resp.Chunks),
	)
	result.Answer = resp.Answer
	result.Chunks = resp.Chunks
	return result, nil
}

// EnterSearch processes a navigation request without a query.
func (s *chatService) EnterSearch(ctx context.Context, userID, sessionID int64, newChat bool) (QueryResult, error) {
	return s.HandleQuery(ctx, QueryRequest{UserID: userID, SessionID: sessionID, NewChat: newChat})
}

// DeleteSession deletes a session owned by userID.
func (s *chatService) DeleteSession(ctx context.Context, userID, sessionID int64) (int64, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.sessions.DeleteOwned(ctx, userID, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "refused to delete session", "session_id", sessionID, "user_id", userID)
			return 0, apperr.ErrSessionOwnership
		}
		return 0, apperr.WrapError(err, "failed to delete session")
	}

	remaining, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return 0, apperr.WrapError(err, "failed to list sessions")
	}

	logger.InfoContext(ctx, "session deleted", "session_id", sessionID, "remaining", len(remaining))
	if len(remaining) == 0 {
		return 0, nil
	}
	return remaining[0].ID, nil
}

// ListSessions returns the user's sessions.
func (s *chatService) ListSessions(ctx context.Context, userID int64) ([]storage.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.WrapError(err, "failed to list sessions")
	}
	return sessions, nil
}

// GetSession returns an owned session and its messages.
func (s *chatService) GetSession(ctx context.Context, userID, sessionID int64) (SessionView, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	msgs, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return SessionView{}, apperr.WrapError(err, "failed to load messages")
	}
	return SessionView{Session: session, Messages: msgs}, nil
}

func (s *chatService) redirectToEmpty(ctx context.Context, userID int64) (QueryResult, error) {
	session, err := s.sessions.GetOrCreateEmpty(ctx, userID)
	if err != nil {
		return QueryResult{}, apperr.WrapError(err, "failed to get empty session")
	}
	return QueryResult{SessionID: session.ID, Redirect: true}, nil
}

func (s *chatService) ownedSession(ctx context.Context, userID, sessionID int64) (storage.Session, error) {
	session, err := s.sessions.GetOwned(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "session not accessible", "session_id", sessionID, "user_id", userID)
			return storage.Session{}, apperr.ErrSessionOwnership
		}
		return storage.Session{}, apperr.WrapError(err, "failed to load session")
	}
	return session, nil
}

// opensSession reports whether the next user message is the session's first
// and the session is still untitled. Concurrent first queries all report
// true; SetTitleIfEmpty lets exactly one of them title the session.
func (s *chatService) opensSession(ctx context.Context, session storage.Session) (bool, error) {
	if session.Title != "" {
		return false, nil
	}
	n, err := s.messages.CountBySession(ctx, session.ID)
	if err != nil {
		return false, apperr.WrapError(err, "failed to count messages")
	}
	return n == 0, nil
}

// DeriveTitle returns the first six words of query, with "..." appended when
// words were dropped.
func DeriveTitle(query string) string {
	words := strings.Fields(query)
	if len(words) <= titleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWords], " ") + "..."
}
