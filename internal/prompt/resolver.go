package prompt

import (
	"context"
	"fmt"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/storage"
)

// TextReader loads module text by its stored file path.
type TextReader interface {
	ReadText(relPath string) (string, error)
}

// Resolver turns a Selection into loaded Modules.
type Resolver struct {
	store storage.ModuleStore
	files TextReader
}

// NewResolver creates a new Resolver.
func NewResolver(store storage.ModuleStore, files TextReader) *Resolver {
	return &Resolver{store: store, files: files}
}

// Resolve loads the selected modules and every global philosophy. Repeated
// ids keep their first occurrence. An unknown id or an id of the wrong kind
// is a validation error.
func (r *Resolver) Resolve(ctx context.Context, sel Selection) (Modules, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := sel.Validate(); err != nil {
		return Modules{}, err
	}

	personaIDs := dedupe(sel.PersonaIDs)
	toneIDs := dedupe(sel.ToneIDs)

	ids := make([]int64, 0, len(personaIDs)+len(toneIDs)+2)
	if sel.PhilosophyID != nil {
		ids = append(ids, *sel.PhilosophyID)
	}
	ids = append(ids, personaIDs...)
	if sel.VoiceID != nil {
		ids = append(ids, *sel.VoiceID)
	}
	ids = append(ids, toneIDs...)

	byID := make(map[int64]storage.PromptModule)
	if len(ids) > 0 {
		records, err := r.store.GetByIDs(ctx, dedupe(ids))
		if err != nil {
			return Modules{}, fmt.Errorf("failed to load prompt modules: %w", err)
		}
		for _, rec := range records {
			byID[rec.ID] = rec
		}
	}

	var mods Modules
	var err error

	globals, err := r.store.ListGlobalPhilosophies(ctx)
	if err != nil {
		return Modules{}, fmt.Errorf("failed to load global philosophies: %w", err)
	}
	for _, rec := range globals {
		m, err := r.load(rec)
		if err != nil {
			return Modules{}, err
		}
		mods.GlobalPhilosophies = append(mods.GlobalPhilosophies, m)
	}

	if sel.PhilosophyID != nil {
		if mods.Philosophy, err = r.one(byID, *sel.PhilosophyID, storage.KindPhilosophy, "philosophy_id"); err != nil {
			return Modules{}, err
		}
	}
	if mods.Personas, err = r.many(byID, personaIDs, storage.KindPersona, "persona_ids"); err != nil {
		return Modules{}, err
	}
	if sel.VoiceID != nil {
		if mods.Voice, err = r.one(byID, *sel.VoiceID, storage.KindVoice, "voice_id"); err != nil {
			return Modules{}, err
		}
	}
	if mods.Tones, err = r.many(byID, toneIDs, storage.KindTone, "tone_ids"); err != nil {
		return Modules{}, err
	}

	logger.DebugContext(ctx, "resolved prompt modules",
		"global_philosophies", len(mods.GlobalPhilosophies),
		"personas", len(mods.Personas),
		"tones", len(mods.Tones),
	)
	return mods, nil
}

func (r *Resolver) one(byID map[int64]storage.PromptModule, id int64, kind storage.ModuleKind, field string) (*Module, error) {
	rec, ok := byID[id]
	if !ok {
		return nil, apperr.Invalid(field, fmt.Sprintf("unknown %s %d", kind, id))
	}
	if rec.Kind != kind {
		return nil, apperr.Invalid(field, fmt.Sprintf("module %d is a %s, not a %s", id, rec.Kind, kind))
	}
	m, err := r.load(rec)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Resolver) many(byID map[int64]storage.PromptModule, ids []int64, kind storage.ModuleKind, field string) ([]Module, error) {
	var out []Module
	for _, id := range ids {
		m, err := r.one(byID, id, kind, field)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *Resolver) load(rec storage.PromptModule) (Module, error) {
	text, err := r.files.ReadText(rec.FilePath)
	if err != nil {
		return Module{}, fmt.Errorf("failed to read %s module %d: %w", rec.Kind, rec.ID, err)
	}
	return Module{
		ID:       rec.ID,
		Kind:     rec.Kind,
		Title:    rec.Title,
		Text:     text,
		IsGlobal: rec.IsGlobal,
	}, nil
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
