package prompt

import (
	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/storage"
)

// Module is a prompt module with its text loaded.
type Module struct {
	ID       int64
	Kind     storage.ModuleKind
	Title    string
	Text     string
	IsGlobal bool
}

// Selection is the caller's choice of prompt modules. Persona and tone ids
// keep their selection order.
type Selection struct {
	PhilosophyID *int64  `json:"philosophy_id,omitempty"`
	PersonaIDs   []int64 `json:"persona_ids,omitempty"`
	VoiceID      *int64  `json:"voice_id,omitempty"`
	ToneIDs      []int64 `json:"tone_ids,omitempty"`
}

// Validate rejects non-positive ids.
func (s Selection) Validate() error {
	if s.PhilosophyID != nil && *s.PhilosophyID <= 0 {
		return apperr.Invalid("philosophy_id", "must be a positive id")
	}
	if s.VoiceID != nil && *s.VoiceID <= 0 {
		return apperr.Invalid("voice_id", "must be a positive id")
	}
	for _, id := range s.PersonaIDs {
		if id <= 0 {
			return apperr.Invalid("persona_ids", "must contain positive ids")
		}
	}
	for _, id := range s.ToneIDs {
		if id <= 0 {
			return apperr.Invalid("tone_ids", "must contain positive ids")
		}
	}
	return nil
}

// Modules is a resolved selection plus the global philosophies.
type Modules struct {
	GlobalPhilosophies []Module
	Philosophy         *Module
	Personas           []Module
	Voice              *Module
	Tones              []Module
}

// Chunk is a retrieved passage handed to the composer, most relevant first.
type Chunk struct {
	DocumentName string
	Text         string
}

// Prompt is the composed language model input.
type Prompt struct {
	System string
	User   string
}
