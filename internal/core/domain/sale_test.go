// internal/core/domain/sale_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

func TestFloorPrice(t *testing.T) {
	minWholesale := decimal.NewFromInt(46200)
	minRetail := decimal.NewFromInt(47800)

	tests := []struct {
		name     string
		item     *domain.InventoryItem
		saleType domain.SaleType
		expected decimal.Decimal
	}{
		{
			name:     "wholesale_default_margin",
			item:     &domain.InventoryItem{PurchasePrice: decimal.NewFromInt(45000)},
			saleType: domain.SaleTypeWholesale,
			expected: decimal.NewFromInt(45500),
		},
		{
			name:     "retail_default_margin",
			item:     &domain.InventoryItem{PurchasePrice: decimal.NewFromInt(45000)},
			saleType: domain.SaleTypeRetail,
			expected: decimal.NewFromInt(46000),
		},
		{
			name: "wholesale_override",
			item: &domain.InventoryItem{
				PurchasePrice:     decimal.NewFromInt(45000),
				MinWholesalePrice: &minWholesale,
			},
			saleType: domain.SaleTypeWholesale,
			expected: minWholesale,
		},
		{
			name: "retail_override",
			item: &domain.InventoryItem{
				PurchasePrice:  decimal.NewFromInt(45000),
				MinRetailPrice: &minRetail,
			},
			saleType: domain.SaleTypeRetail,
			expected: minRetail,
		},
		{
			name: "override_applies_only_to_its_channel",
			item: &domain.InventoryItem{
				PurchasePrice:     decimal.NewFromInt(45000),
				MinWholesalePrice: &minWholesale,
			},
			saleType: domain.SaleTypeRetail,
			expected: decimal.NewFromInt(46000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor := domain.FloorPrice(tt.item, tt.saleType)
			assert.True(t, floor.Equal(tt.expected),
				"expected %s, got %s", tt.expected, floor)
		})
	}
}

func TestCheckSalePrice(t *testing.T) {
	item := &domain.InventoryItem{PurchasePrice: decimal.NewFromInt(45000)}

	t.Run("accepts_price_at_floor", func(t *testing.T) {
		err := domain.CheckSalePrice(item, domain.SaleTypeRetail, decimal.NewFromInt(46000))
		assert.NoError(t, err)
	})

	t.Run("accepts_price_above_floor", func(t *testing.T) {
		err := domain.CheckSalePrice(item, domain.SaleTypeWholesale, decimal.NewFromInt(50000))
		assert.NoError(t, err)
	})

	t.Run("rejects_price_below_floor", func(t *testing.T) {
		err := domain.CheckSalePrice(item, domain.SaleTypeRetail, decimal.NewFromInt(45999))

		var priceErr *domain.PriceTooLowError
		require.ErrorAs(t, err, &priceErr)
		assert.Equal(t, domain.SaleTypeRetail, priceErr.SaleType)
		assert.True(t, priceErr.Floor.Equal(decimal.NewFromInt(46000)))
		assert.Equal(t, "retail price must be at least ₹46000", err.Error())
	})

	t.Run("rejects_unknown_sale_type", func(t *testing.T) {
		err := domain.CheckSalePrice(item, domain.SaleType("auction"), decimal.NewFromInt(99999))

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestSale_Validate(t *testing.T) {
	valid := func() *domain.Sale {
		return &domain.Sale{
			ItemID:       uuid.New(),
			CustomerName: "Ravi Kumar",
			CustomerPhoto: domain.ImageRef{
				URL:        "https://cdn.example.com/customers/c.png",
				ExternalID: "customers/c",
			},
			IMEI:      "356789104563218",
			SalePrice: decimal.NewFromInt(51000),
			SaleType:  domain.SaleTypeRetail,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Sale)
		wantErr string
	}{
		{
			name:   "valid_sale",
			mutate: func(s *domain.Sale) {},
		},
		{
			name:    "missing_item_id",
			mutate:  func(s *domain.Sale) { s.ItemID = uuid.Nil },
			wantErr: "item id is required",
		},
		{
			name:    "missing_customer_name",
			mutate:  func(s *domain.Sale) { s.CustomerName = " " },
			wantErr: "customer name is required",
		},
		{
			name:    "missing_customer_photo",
			mutate:  func(s *domain.Sale) { s.CustomerPhoto = domain.ImageRef{} },
			wantErr: "customer photo is required",
		},
		{
			name:    "missing_imei",
			mutate:  func(s *domain.Sale) { s.IMEI = "" },
			wantErr: "IMEI code is required",
		},
		{
			name:    "invalid_sale_type",
			mutate:  func(s *domain.Sale) { s.SaleType = "auction" },
			wantErr: "invalid sale type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := valid()
			tt.mutate(sale)

			err := sale.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestSale_PrepareForStorage(t *testing.T) {
	sale := &domain.Sale{
		ItemID:       uuid.New(),
		CustomerName: "Ravi Kumar",
	}

	sale.PrepareForStorage()

	assert.NotEqual(t, uuid.Nil, sale.SaleID)
	assert.False(t, sale.SaleDate.IsZero())
	assert.False(t, sale.CreatedAt.IsZero())

	id := sale.SaleID
	sale.PrepareForStorage()
	assert.Equal(t, id, sale.SaleID)
}
