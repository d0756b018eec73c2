// internal/core/ports/item_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// ItemRepository defines the persistence port for inventory items.
// This interface is implemented by the database adapter, which is the only
// writer of quantity/status and performs both transitions as atomic
// conditional updates.
type ItemRepository interface {
	Save(ctx context.Context, item *domain.InventoryItem) error
	Update(ctx context.Context, itemID uuid.UUID, update *domain.ItemUpdate) (*domain.InventoryItem, error)
	FindByID(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error)
	// FindByBrandModel matches brand+model case-insensitively among
	// non-archived items.
	FindByBrandModel(ctx context.Context, brand domain.Brand, model string) (*domain.InventoryItem, error)
	FindAll(ctx context.Context, params ListParams) ([]*domain.InventoryItem, int64, error)
	Search(ctx context.Context, query string) ([]*domain.InventoryItem, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
	// Sell atomically decrements quantity by one (only while quantity > 0),
	// recomputes status, and appends the sale record in the same
	// transaction. Returns domain.ErrOutOfStock when the item exists at
	// quantity 0 and domain.ErrItemNotFound when it does not exist.
	Sell(ctx context.Context, itemID uuid.UUID, sale *domain.Sale) (*domain.InventoryItem, error)
	// Restock atomically increments quantity and recomputes status.
	Restock(ctx context.Context, itemID uuid.UUID, quantityToAdd int) (*domain.InventoryItem, error)
	SetArchived(ctx context.Context, itemID uuid.UUID, archived bool) (*domain.InventoryItem, error)
	Stats(ctx context.Context) (*domain.InventoryStats, error)
}

// ListParams holds filter, sort and pagination parameters for listing
// inventory. A Brand of "All" (or empty) applies no brand filter.
type ListParams struct {
	Brand           string
	Status          string
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	IncludeArchived bool
	ArchivedOnly    bool
	SortBy          string
	SortOrder       string
	Page            int
	Limit           int
}

// Normalize applies the documented defaults: page=1, limit=20,
// sortBy=createdAt, sortOrder=desc.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// ListResult holds one page of items plus pagination metadata
type ListResult struct {
	Items      []*domain.InventoryItem `json:"items"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"pages"`
}
