// internal/core/ports/sale_repository.go
package ports

import (
	"context"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// SaleRepository defines the persistence port for sale records. Sales are
// append-only: they are written inside the sell transaction (see
// ItemRepository.Sell) and never mutated or deleted afterwards.
type SaleRepository interface {
	// FindAll lists sale history joined with the referenced item, newest
	// first by default. Sales whose item was deleted carry a nil item.
	FindAll(ctx context.Context, params SaleListParams) ([]*domain.SaleWithItem, error)
	Count(ctx context.Context) (int64, error)
}

// SaleListParams holds search and sort parameters for sale history.
// Search matches brand, model, customer name, or IMEI case-insensitively.
type SaleListParams struct {
	Search    string
	SortBy    string
	SortOrder string
}
