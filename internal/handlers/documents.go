package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/indexer"
	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/storage"
)

// maxUploadSize bounds multipart uploads.
const maxUploadSize = 32 << 20

// DocumentHandler handles the document library.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DocumentResponse describes a stored document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadResponse is returned for a successful upload.
type UploadResponse struct {
	Document DocumentResponse    `json:"document"`
	Index    indexer.IndexResult `json:"index"`
}

// DocumentListResponse lists documents, newest first.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// ReindexAllResponse reports a library reindex. Error summarizes documents
// that failed.
type ReindexAllResponse struct {
	Results []indexer.IndexResult `json:"results"`
	Error   string                `json:"error,omitempty"`
}

// Upload handles POST /api/documents (multipart "file" and "tags").
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.WarnContext(ctx, "invalid multipart upload", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	res, err := h.documentService.Upload(ctx, service.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Tags:        splitTags(r.MultipartForm.Value["tags"]),
	})
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusCreated, UploadResponse{
		Document: toDocumentResponse(res.Document),
		Index:    res.Index,
	})
}

// List handles GET /api/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := h.documentService.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	resp := DocumentListResponse{Documents: make([]DocumentResponse, len(docs))}
	for i, d := range docs {
		resp.Documents[i] = toDocumentResponse(d)
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.documentService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reindex handles POST /api/documents/{id}/reindex.
func (h *DocumentHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.documentService.Reindex(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, res)
}

// ReindexAll handles POST /api/documents/reindex.
func (h *DocumentHandler) ReindexAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results, err := h.documentService.ReindexAll(ctx)
	if err != nil && len(results) == 0 {
		handleServiceError(w, ctx, err)
		return
	}
	resp := ReindexAllResponse{Results: results}
	if resp.Results == nil {
		resp.Results = []indexer.IndexResult{}
	}
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "reindex finished with errors", "error", err)
		resp.Error = err.Error()
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// splitTags accepts repeated fields and comma-separated lists.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func toDocumentResponse(d storage.Document) DocumentResponse {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:          d.ID,
		Name:        d.Name,
		ContentType: d.ContentType,
		Tags:        tags,
		CreatedAt:   d.CreatedAt,
	}
}
