package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks lessonplanner-ai/internal/llm Embedder,Completer

import "context"

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a chat completion.
type Completer interface {
	ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

var (
	_ Embedder  = (*EmbeddingsClient)(nil)
	_ Completer = (*Client)(nil)
)
