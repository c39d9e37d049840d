package rag

import (
	"lessonplanner-ai/internal/llm"
	"lessonplanner-ai/internal/prompt"
)

// AnswerRequest represents a retrieval-augmented query.
type AnswerRequest struct {
	// Query is the user's question.
	Query string
	// TopK is the number of chunks to retrieve. Zero selects the default; values above MaxTopK are capped.
	TopK int
	// Model is the completion model. Empty selects llm.DefaultModel.
	Model llm.Model
	// Modules are the resolved prompt modules.
	Modules prompt.Modules
	// Tags optionally restricts retrieval to documents carrying any of the tags.
	Tags []string
}

// Chunk is a retrieved chunk that was given to the model.
type Chunk struct {
	Text         string  `json:"text"`
	Score        float32 `json:"score"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
}

// AnswerResponse represents the result of a retrieval-augmented query.
type AnswerResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// Chunks are the retrieved chunks, most relevant first.
	Chunks []Chunk `json:"chunks"`
	// Model is the model that produced the answer.
	Model llm.Model `json:"model"`
}
