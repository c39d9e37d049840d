package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"lessonplanner-ai/internal/apperr"
	"lessonplanner-ai/internal/contextutil"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

const msgNotFound = "Resource not found"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusForError maps an application error to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrSessionOwnership), errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrExtraction), errors.Is(err, apperr.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrEmbeddingProvider), errors.Is(err, apperr.ErrCompletionProvider):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the client-facing message for err. Internal failures
// are not described.
func publicMessage(err error) string {
	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Validation error: %s", validationErr.Error())
	case errors.Is(err, apperr.ErrSessionOwnership):
		return apperr.ErrSessionOwnership.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return msgNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, apperr.ErrExtraction):
		return "Could not extract text from the document"
	case errors.Is(err, apperr.ErrEmptyDocument):
		return "The document contains no text"
	case errors.Is(err, apperr.ErrEmbeddingProvider):
		return "Embedding service error"
	case errors.Is(err, apperr.ErrCompletionProvider):
		return "Language model service error"
	case errors.Is(err, apperr.ErrIndexUnavailable):
		return "Vector index unavailable"
	default:
		return "Internal server error"
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error) {
	status := StatusForError(err)
	logger := contextutil.LoggerFromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err, "status", status)
	} else {
		logger.WarnContext(ctx, "request rejected", "error", err, "status", status)
	}
	writeError(w, status, publicMessage(err))
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// decodeJSON decodes the request body into dst and validates its struct tags.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return validateStruct(w, r, dst)
}

func validateStruct(w http.ResponseWriter, r *http.Request, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		handleServiceError(w, r.Context(), err)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[jsonFieldPath(e.Namespace())] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	contextutil.LoggerFromContext(r.Context()).WarnContext(r.Context(), "request validation failed", "fields", fields)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Validation failed", Fields: fields})
	return false
}

// jsonFieldPath drops the root struct name from a validator namespace.
func jsonFieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// currentUser returns the authenticated caller or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (contextutil.User, bool) {
	user, ok := contextutil.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return contextutil.User{}, false
	}
	return user, true
}

// int64Param parses a positive integer URL parameter. A malformed value is
// reported as not found.
func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		writeError(w, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return v, true
}
