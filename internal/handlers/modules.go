package handlers

import (
	"net/http"

	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/storage"
)

// ModuleHandler lists the prompt module catalogue.
type ModuleHandler struct {
	modules storage.ModuleStore
}

// NewModuleHandler creates a new ModuleHandler.
func NewModuleHandler(modules storage.ModuleStore) *ModuleHandler {
	return &ModuleHandler{modules: modules}
}

// ModuleResponse is one selectable prompt module.
type ModuleResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	IsGlobal bool   `json:"is_global,omitempty"`
}

// ModuleListResponse groups modules by kind and names the selectable models.
type ModuleListResponse struct {
	Philosophies []ModuleResponse `json:"philosophies"`
	Personas     []ModuleResponse `json:"personas"`
	Voices       []ModuleResponse `json:"voices"`
	Tones        []ModuleResponse `json:"tones"`
	Models       []llm.Model      `json:"models"`
	DefaultModel llm.Model        `json:"default_model"`
}

// List handles GET /api/modules.
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	modules, err := h.modules.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	resp := ModuleListResponse{
		Philosophies: []ModuleResponse{},
		Personas:     []ModuleResponse{},
		Voices:       []ModuleResponse{},
		Tones:        []ModuleResponse{},
		Models:       llm.Models(),
		DefaultModel: llm.DefaultModel,
	}
	for _, m := range modules {
		item := ModuleResponse{ID: m.ID, Title: m.Title, IsGlobal: m.IsGlobal}
		switch m.Kind {
		case storage.KindPhilosophy:
			resp.Philosophies = append(resp.Philosophies, item)
		case storage.KindPersona:
			resp.Personas = append(resp.Personas, item)
		case storage.KindVoice:
			resp.Voices = append(resp.Voices, item)
		case storage.KindTone:
			resp.Tones = append(resp.Tones, item)
		}
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}
