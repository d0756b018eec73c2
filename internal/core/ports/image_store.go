// internal/core/ports/image_store.go
package ports

import (
	"context"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// Image storage folders
const (
	ImageFolderInventory = "inventory"
	ImageFolderCustomers = "customers"
)

// ImageStore defines the port for the remote object store that holds item
// and customer photos. Uploads validate content type (JPEG/PNG/WebP) and
// size (10MB) before any remote call and return a stable reference.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder string) (domain.ImageRef, error)
	Delete(ctx context.Context, externalID string) error
}
