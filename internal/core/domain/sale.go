// internal/core/domain/sale.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleType represents the pricing channel a unit was sold through
type SaleType string

// Sale type constants
const (
	SaleTypeRetail    SaleType = "retail"
	SaleTypeWholesale SaleType = "wholesale"
)

// IsValid reports whether the sale type is one of the known channels
func (t SaleType) IsValid() bool {
	return t == SaleTypeRetail || t == SaleTypeWholesale
}

// Default margins over purchase price when no per-item floor is configured
var (
	defaultWholesaleMargin = decimal.NewFromInt(500)
	defaultRetailMargin    = decimal.NewFromInt(1000)
)

// Sale is an immutable record of one unit sold from an inventory item
type Sale struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	ItemID        uuid.UUID       `json:"item_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhoto ImageRef        `json:"customer_photo"`
	IMEI          string          `json:"imei"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	SaleType      SaleType        `json:"sale_type"`
	SaleDate      time.Time       `json:"sale_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the sale record
func (s *Sale) Validate() error {
	if s.ItemID == uuid.Nil {
		return NewValidationError("item id is required")
	}
	if strings.TrimSpace(s.CustomerName) == "" {
		return NewValidationError("customer name is required")
	}
	if s.CustomerPhoto.IsZero() {
		return NewValidationError("customer photo is required")
	}
	if strings.TrimSpace(s.IMEI) == "" {
		return NewValidationError("IMEI code is required")
	}
	if !s.SaleType.IsValid() {
		return NewValidationError("invalid sale type")
	}
	return nil
}

// PrepareForStorage fills server-managed fields before persistence
func (s *Sale) PrepareForStorage() {
	if s.SaleID == uuid.Nil {
		s.SaleID = uuid.New()
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	if s.SaleDate.IsZero() {
		s.SaleDate = now
	}
}

// FloorPrice computes the minimum acceptable sale price for an item and
// sale type: the per-item override when set, otherwise purchase price plus
// the channel's default margin.
func FloorPrice(item *InventoryItem, saleType SaleType) decimal.Decimal {
	switch saleType {
	case SaleTypeWholesale:
		if item.MinWholesalePrice != nil {
			return *item.MinWholesalePrice
		}
		return item.PurchasePrice.Add(defaultWholesaleMargin)
	case SaleTypeRetail:
		if item.MinRetailPrice != nil {
			return *item.MinRetailPrice
		}
		return item.PurchasePrice.Add(defaultRetailMargin)
	default:
		return decimal.Zero
	}
}

// CheckSalePrice enforces the floor for the given channel. It returns a
// PriceTooLowError carrying the computed floor when the price is below it.
func CheckSalePrice(item *InventoryItem, saleType SaleType, salePrice decimal.Decimal) error {
	if !saleType.IsValid() {
		return NewValidationError("invalid sale type")
	}

	floor := FloorPrice(item, saleType)
	if salePrice.LessThan(floor) {
		return &PriceTooLowError{SaleType: saleType, Floor: floor}
	}
	return nil
}

// SaleWithItem pairs a sale with a snapshot of the item it references for
// history listings. Item is nil when the item has since been deleted.
type SaleWithItem struct {
	Sale
	Item *SaleItemRef `json:"item"`
}

// SaleItemRef is the projection of an inventory item shown in sale history
type SaleItemRef struct {
	ItemID uuid.UUID `json:"item_id"`
	Model  string    `json:"model"`
	Brand  Brand     `json:"brand"`
}

// DeletedItemLabel is shown for sales whose item no longer exists
const DeletedItemLabel = "Deleted Item"
