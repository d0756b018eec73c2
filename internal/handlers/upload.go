// internal/handlers/upload.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// UploadHandler serves standalone image upload and deletion
type UploadHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service ports.InventoryService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "upload")),
	}
}

// UploadImage handles POST /api/v1/upload/image
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	data, err := readFormFile(r, "image")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if data == nil {
		respondError(w, h.logger, http.StatusBadRequest, "image file is required")
		return
	}

	ref, err := h.service.UploadImage(ctx, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "image upload failed",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to upload image")
		return
	}

	respondSuccess(w, h.logger, http.StatusCreated, "Image uploaded", ref)
}

// DeleteImage handles DELETE /api/v1/upload/image/{id...}
// The wildcard carries the full object key, folder prefix included.
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	externalID := r.PathValue("id")
	if err := h.service.DeleteImage(ctx, externalID); err != nil {
		h.logger.ErrorContext(ctx, "image delete failed",
			slog.String("external_id", externalID),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to delete image")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "Image deleted", nil)
}
