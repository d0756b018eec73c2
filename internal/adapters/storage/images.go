// internal/adapters/storage/images.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// MaxImageSize is the largest accepted image payload
const MaxImageSize = 10 << 20 // 10MB

// imageExtensions maps accepted content types to object key extensions
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore validates and stores item and customer photos on top of an
// ObjectStore. Content type is sniffed from the payload, never trusted
// from the client.
type ImageStore struct {
	store  ObjectStore
	logger *slog.Logger
}

var _ ports.ImageStore = (*ImageStore)(nil)

// NewImageStore creates a new image store
func NewImageStore(store ObjectStore, logger *slog.Logger) *ImageStore {
	return &ImageStore{
		store:  store,
		logger: logger.With(slog.String("component", "image_store")),
	}
}

// Upload validates the image and stores it under a fresh key in the given
// folder. The returned reference carries both the public URL and the object
// key used for later deletion.
func (s *ImageStore) Upload(ctx context.Context, data []byte, folder string) (domain.ImageRef, error) {
	if len(data) == 0 {
		return domain.ImageRef{}, &domain.UploadError{Reason: "empty image payload"}
	}
	if len(data) > MaxImageSize {
		return domain.ImageRef{}, &domain.UploadError{
			Reason: fmt.Sprintf("image exceeds %dMB limit", MaxImageSize>>20),
		}
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return domain.ImageRef{}, &domain.UploadError{
			Reason: fmt.Sprintf("unsupported image type %s", contentType),
		}
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return domain.ImageRef{}, &domain.UploadError{Reason: "storage upload failed", Err: err}
	}

	s.logger.InfoContext(ctx, "image uploaded",
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)))

	return domain.ImageRef{URL: url, ExternalID: key}, nil
}

// Delete removes a previously uploaded image by its object key
func (s *ImageStore) Delete(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}

	if err := s.store.Delete(ctx, externalID); err != nil {
		return &domain.DeleteError{ExternalID: externalID, Err: err}
	}

	s.logger.InfoContext(ctx, "image deleted", slog.String("key", externalID))
	return nil
}
