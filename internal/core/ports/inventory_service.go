// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// InventoryService defines the application service port for inventory.
// It is the single authority for state transitions on inventory items and
// coordinates image storage and sale recording.
type InventoryService interface {
	CreateItem(ctx context.Context, item *domain.InventoryItem, image []byte) (*domain.InventoryItem, error)
	GetAllItems(ctx context.Context, params ListParams) (*ListResult, error)
	GetItemByID(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, update *domain.ItemUpdate, image []byte) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	SearchItems(ctx context.Context, query string) ([]*domain.InventoryItem, error)
	GetStats(ctx context.Context) (*domain.InventoryStats, error)
	SellItem(ctx context.Context, itemID uuid.UUID, req SellRequest, photo []byte) (*domain.InventoryItem, error)
	RestockItem(ctx context.Context, itemID uuid.UUID, quantityToAdd int) (*domain.InventoryItem, error)
	ArchiveItem(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error)
	UnarchiveItem(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error)
	UploadImage(ctx context.Context, data []byte) (domain.ImageRef, error)
	DeleteImage(ctx context.Context, externalID string) error
}

// SellRequest carries the sale parameters for SellItem. The customer photo
// travels separately as raw bytes.
type SellRequest struct {
	CustomerName string
	IMEI         string
	SalePrice    decimal.Decimal
	SaleType     domain.SaleType
}
