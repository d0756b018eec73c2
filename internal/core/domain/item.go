// internal/core/domain/item.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Brand represents the fixed set of phone brands the shop stocks
type Brand string

// Brand constants
const (
	BrandApple    Brand = "Apple"
	BrandSamsung  Brand = "Samsung"
	BrandGoogle   Brand = "Google"
	BrandXiaomi   Brand = "Xiaomi"
	BrandOnePlus  Brand = "OnePlus"
	BrandMotorola Brand = "Motorola"
	BrandVivo     Brand = "Vivo"
	BrandOppo     Brand = "Oppo"
	BrandIQOO     Brand = "iQOO"
	BrandOther    Brand = "Other"
)

// SupportedBrands lists every accepted brand value
var SupportedBrands = []Brand{
	BrandApple, BrandSamsung, BrandGoogle, BrandXiaomi, BrandOnePlus,
	BrandMotorola, BrandVivo, BrandOppo, BrandIQOO, BrandOther,
}

// IsValid reports whether the brand belongs to the supported set
func (b Brand) IsValid() bool {
	for _, s := range SupportedBrands {
		if b == s {
			return true
		}
	}
	return false
}

// StockStatus represents the derived stock-level classification
type StockStatus string

// Stock status constants
const (
	StatusInStock    StockStatus = "in_stock"
	StatusLow        StockStatus = "low"
	StatusOutOfStock StockStatus = "out_of_stock"
)

// lowStockThreshold is the quantity at or below which an item counts as low
const lowStockThreshold = 5

// StatusForQuantity derives the stock status from a quantity.
// quantity==0 -> out_of_stock, 1..5 -> low, >5 -> in_stock.
func StatusForQuantity(quantity int) StockStatus {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= lowStockThreshold:
		return StatusLow
	default:
		return StatusInStock
	}
}

// ImageRef is a stable reference to an image held in remote object storage
type ImageRef struct {
	URL        string `json:"url,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// IsZero reports whether no image is referenced
func (r ImageRef) IsZero() bool {
	return r.URL == "" && r.ExternalID == ""
}

// InventoryItem represents a single phone stock unit
type InventoryItem struct {
	ItemID            uuid.UUID        `json:"item_id"`
	Model             string           `json:"model"`
	Brand             Brand            `json:"brand"`
	IMEI              string           `json:"imei,omitempty"`
	PurchasePrice     decimal.Decimal  `json:"purchase_price"`
	SellingPrice      decimal.Decimal  `json:"selling_price"`
	Quantity          int              `json:"quantity"`
	MinWholesalePrice *decimal.Decimal `json:"min_wholesale_price,omitempty"`
	MinRetailPrice    *decimal.Decimal `json:"min_retail_price,omitempty"`
	Supplier          string           `json:"supplier,omitempty"`
	PurchaseDate      time.Time        `json:"purchase_date"`
	Status            StockStatus      `json:"status"`
	Color             string           `json:"color,omitempty"`
	Image             ImageRef         `json:"image"`
	IsArchived        bool             `json:"is_archived"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Validate performs domain validation on the inventory item
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Model) == "" {
		return NewValidationError("model is required")
	}
	if i.Brand == "" {
		return NewValidationError("brand is required")
	}
	if !i.Brand.IsValid() {
		return NewValidationError(fmt.Sprintf("%s is not a supported brand", i.Brand))
	}
	if i.PurchasePrice.IsNegative() {
		return NewValidationError("purchase price cannot be negative")
	}
	if i.SellingPrice.IsNegative() {
		return NewValidationError("selling price cannot be negative")
	}
	if i.Quantity < 0 {
		return NewValidationError("quantity cannot be negative")
	}
	return nil
}

// RecomputeStatus re-derives status from the current quantity
func (i *InventoryItem) RecomputeStatus() {
	i.Status = StatusForQuantity(i.Quantity)
}

// PrepareForStorage fills server-managed fields before persistence.
// A brand-new item with no quantity starts at one unit; re-preparing an
// existing record never touches the quantity.
func (i *InventoryItem) PrepareForStorage() {
	if i.ItemID == uuid.Nil {
		i.ItemID = uuid.New()
		if i.Quantity == 0 {
			i.Quantity = 1
		}
	}

	now := time.Now()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now

	if i.PurchaseDate.IsZero() {
		i.PurchaseDate = now
	}

	i.RecomputeStatus()
}

// ItemUpdate carries a partial update; nil fields are left untouched
type ItemUpdate struct {
	Model             *string
	Brand             *Brand
	IMEI              *string
	PurchasePrice     *decimal.Decimal
	SellingPrice      *decimal.Decimal
	Quantity          *int
	MinWholesalePrice *decimal.Decimal
	MinRetailPrice    *decimal.Decimal
	ClearMinWholesale bool
	ClearMinRetail    bool
	Supplier          *string
	PurchaseDate      *time.Time
	Color             *string
	Image             *ImageRef
}

// Validate checks the fields that are present on the partial update
func (u *ItemUpdate) Validate() error {
	if u.Model != nil && strings.TrimSpace(*u.Model) == "" {
		return NewValidationError("model cannot be empty")
	}
	if u.Brand != nil && !u.Brand.IsValid() {
		return NewValidationError(fmt.Sprintf("%s is not a supported brand", *u.Brand))
	}
	if u.PurchasePrice != nil && u.PurchasePrice.IsNegative() {
		return NewValidationError("purchase price cannot be negative")
	}
	if u.SellingPrice != nil && u.SellingPrice.IsNegative() {
		return NewValidationError("selling price cannot be negative")
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return NewValidationError("quantity cannot be negative")
	}
	return nil
}

// IsEmpty reports whether the update changes nothing
func (u *ItemUpdate) IsEmpty() bool {
	return u.Model == nil && u.Brand == nil && u.IMEI == nil &&
		u.PurchasePrice == nil && u.SellingPrice == nil && u.Quantity == nil &&
		u.MinWholesalePrice == nil && u.MinRetailPrice == nil &&
		!u.ClearMinWholesale && !u.ClearMinRetail &&
		u.Supplier == nil && u.PurchaseDate == nil && u.Color == nil &&
		u.Image == nil
}
