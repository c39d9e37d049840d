package llm

import (
	"fmt"
	"strings"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, DefaultModel is used.
	Model Model

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// Default is 0.7 if not specified.
	Temperature float32
}

// Model is a completion model identifier from the supported set.
type Model string

const (
	ModelGPT4oMini Model = "gpt-4o-mini-2024-07-18"
	ModelGPT4o     Model = "gpt-4o-2024-08-06"
	ModelGPT4Turbo Model = "gpt-4-turbo-2024-04-09"
)

// DefaultModel is used when no model is selected.
const DefaultModel = ModelGPT4oMini

var supportedModels = []Model{ModelGPT4oMini, ModelGPT4o, ModelGPT4Turbo}

// Models returns the supported models, default first.
func Models() []Model {
	out := make([]Model, len(supportedModels))
	copy(out, supportedModels)
	return out
}

// ParseModel validates s against the supported set. An empty string selects
// DefaultModel.
func ParseModel(s string) (Model, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultModel, nil
	}
	for _, m := range supportedModels {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported model %q", s)
}

// Valid reports whether m is in the supported set.
func (m Model) Valid() bool {
	_, err := ParseModel(string(m))
	return err == nil && m != ""
}
