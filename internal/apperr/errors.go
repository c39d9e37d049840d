package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction is returned when an uploaded file cannot be converted to text.
	ErrExtraction = errors.New("extraction failed")
	// ErrEmptyDocument is returned when extracted text is empty or whitespace-only.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrEmbeddingProvider is returned when the embedding provider fails.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrIndexUnavailable is returned when the vector index cannot be reached.
	// It is never used to signal an empty result.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrCompletionProvider is returned when the language model provider fails.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrSessionOwnership is returned when a session does not exist or belongs to
	// another user. The message is deliberately indistinguishable from a missing session.
	ErrSessionOwnership = errors.New("session not found")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a *ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Wrap tags err with kind and a message. The result matches both kind and err
// with errors.Is. A nil err yields nil.
func Wrap(kind error, msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
