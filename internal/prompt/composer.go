package prompt

import (
	"fmt"
	"strings"
)

const baseInstructions = "You are a lesson planning assistant for teachers. " +
	"Answer the request using the reference material provided with it. " +
	"If the material does not cover the request, say so and answer from general teaching practice. " +
	"Follow the guidance sections below when shaping the answer."

const noContext = "No reference material matched this request."

// Composer assembles prompts. The output depends only on its inputs.
type Composer struct {
	instructions string
}

// NewComposer creates a composer. An empty instructions string selects the
// built-in lesson planning instructions.
func NewComposer(instructions string) *Composer {
	if strings.TrimSpace(instructions) == "" {
		instructions = baseInstructions
	}
	return &Composer{instructions: instructions}
}

// Compose builds the prompt. Module sections appear in the order global
// philosophies, selected philosophy, personas, voice, tones. The retrieved
// context and then the query form the user message. A selected philosophy
// that is also global is included once.
func (c *Composer) Compose(query string, chunks []Chunk, mods Modules) Prompt {
	var sys strings.Builder
	sys.WriteString(c.instructions)

	seen := make(map[int64]bool)
	for _, m := range mods.GlobalPhilosophies {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		writeSection(&sys, "Philosophy", m)
	}
	if mods.Philosophy != nil && !seen[mods.Philosophy.ID] {
		writeSection(&sys, "Philosophy", *mods.Philosophy)
	}
	for _, m := range mods.Personas {
		writeSection(&sys, "Persona", m)
	}
	if mods.Voice != nil {
		writeSection(&sys, "Voice", *mods.Voice)
	}
	for _, m := range mods.Tones {
		writeSection(&sys, "Tone", m)
	}

	var user strings.Builder
	user.WriteString("--- Reference material ---\n\n")
	if len(chunks) == 0 {
		user.WriteString(noContext)
		user.WriteString("\n\n")
	}
	for i, ch := range chunks {
		fmt.Fprintf(&user, "[%d] %s\n%s\n\n", i+1, ch.DocumentName, strings.TrimSpace(ch.Text))
	}
	user.WriteString("--- End reference material ---\n\n")
	user.WriteString("Request: ")
	user.WriteString(strings.TrimSpace(query))

	return Prompt{System: sys.String(), User: user.String()}
}

func writeSection(sb *strings.Builder, label string, m Module) {
	fmt.Fprintf(sb, "\n\n## %s: %s\n%s", label, m.Title, strings.TrimSpace(m.Text))
}
