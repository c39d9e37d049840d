package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
	"lessonplanner-ai/internal/rag"
	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/service/mocks"
	"lessonplanner-ai/internal/storage"
)

func TestSearchHandler_Navigate(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		userID       int64
		mockSetup    func(m *mocks.MockChatService)
		wantStatus   int
		wantLocation string
	}{
		{
			name:   "no session redirects",
			target: "/api/search",
			userID: 7,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().EnterSearch(gomock.Any(), int64(7), int64(0), false).
					Return(service.QueryResult{SessionID: 12, Redirect: true}, nil)
			},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/api/search?chat_id=12",
		},
		{
			name:   "new chat",
			target: "/api/search?chat_id=3&new_chat=1",
			userID: 7,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().EnterSearch(gomock.Any(), int64(7), int64(3), true).
					Return(service.QueryResult{SessionID: 13, Redirect: true}, nil)
			},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/api/search?chat_id=13",
		},
		{
			name:   "view session",
			target: "/api/search?chat_id=3",
			userID: 7,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().EnterSearch(gomock.Any(), int64(7), int64(3), false).
					Return(service.QueryResult{SessionID: 3, Messages: []storage.Message{{ID: 1, Role: storage.RoleUser, Content: "Hi"}}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "foreign session",
			target: "/api/search?chat_id=4",
			userID: 7,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().EnterSearch(gomock.Any(), int64(7), int64(4), false).
					Return(service.QueryResult{}, apperr.ErrSessionOwnership)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed chat id",
			target:     "/api/search?chat_id=abc",
			userID:     7,
			mockSetup:  func(*mocks.MockChatService) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthenticated",
			target:     "/api/search",
			mockSetup:  func(*mocks.MockChatService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mocks.NewMockChatService(ctrl)
			tt.mockSetup(m)

			w := httptest.NewRecorder()
			NewSearchHandler(m).Navigate(w, newRequest(t, http.MethodGet, tt.target, nil, tt.userID))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestSearchHandler_Query(t *testing.T) {
	philosophy := int64(2)

	t.Run("answer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := mocks.NewMockChatService(ctrl)
		m.EXPECT().
			HandleQuery(gomock.Any(), service.QueryRequest{
				UserID:    7,
				SessionID: 3,
				Query:     "Plan a fractions lesson",
				Selection: prompt.Selection{PhilosophyID: &philosophy, PersonaIDs: []int64{4, 5}},
				Model:     llm.ModelGPT4o,
				TopK:      3,
			}).
			Return(service.QueryResult{
				SessionID: 3,
				Messages: []storage.Message{
					{ID: 1, Role: storage.RoleUser, Content: "Plan a fractions lesson"},
					{ID: 2, Role: storage.RoleAssistant, Content: "Start with halves."},
				},
				Answer: "Start with halves.",
				Chunks: []rag.Chunk{{Text: "Halves.", DocumentID: "doc-1", DocumentName: "a.pdf", Score: 0.9}},
			}, nil)

		body := SearchRequest{
			ChatID: 3,
			Query:  "Plan a fractions lesson",
			Selection: SelectionRequest{
				PhilosophyID: &philosophy,
				PersonaIDs:   []int64{4, 5},
				Model:        " gpt-4o-2024-08-06 ",
			},
			TopK: 3,
		}
		w := httptest.NewRecorder()
		NewSearchHandler(m).Query(w, newRequest(t, http.MethodPost, "/api/search", body, 7))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		resp := decodeBody[SearchResponse](t, w)
		if resp.Answer != "Start with halves." || len(resp.Messages) != 2 || len(resp.Chunks) != 1 {
			t.Errorf("response = %+v", resp)
		}
		if resp.Messages[1].Role != "assistant" {
			t.Errorf("second message role = %q", resp.Messages[1].Role)
		}
	})

	t.Run("answer failure keeps history", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := mocks.NewMockChatService(ctrl)
		m.EXPECT().HandleQuery(gomock.Any(), gomock.Any()).Return(service.QueryResult{
			SessionID: 3,
			Messages:  []storage.Message{{ID: 1, Role: storage.RoleUser, Content: "Hi"}},
			Failure:   apperr.ErrCompletionProvider,
		}, nil)

		w := httptest.NewRecorder()
		NewSearchHandler(m).Query(w, newRequest(t, http.MethodPost, "/api/search", SearchRequest{ChatID: 3, Query: "Hi"}, 7))

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", w.Code)
		}
		resp := decodeBody[SearchResponse](t, w)
		if resp.Error == "" || len(resp.Messages) != 1 || resp.Messages[0].Content != "Hi" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("rejected by service", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := mocks.NewMockChatService(ctrl)
		m.EXPECT().HandleQuery(gomock.Any(), gomock.Any()).
			Return(service.QueryResult{}, apperr.Invalid("model", "unsupported model"))

		w := httptest.NewRecorder()
		NewSearchHandler(m).Query(w, newRequest(t, http.MethodPost, "/api/search", SearchRequest{ChatID: 3, Query: "Hi"}, 7))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"malformed json", `{"chat_id":`},
			{"negative top_k", `{"chat_id":3,"query":"q","top_k":-1}`},
			{"non-positive persona", `{"chat_id":3,"query":"q","selection":{"persona_ids":[0]}}`},
			{"negative chat id", `{"chat_id":-2,"query":"q"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				m := mocks.NewMockChatService(ctrl)

				w := httptest.NewRecorder()
				NewSearchHandler(m).Query(w, newRequest(t, http.MethodPost, "/api/search", tt.body, 7))
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", w.Code)
				}
			})
		}
	})
}
