//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
	"github.com/takeoneapp/takeone-be/test/helpers"
)

type ItemRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	items  ports.ItemRepository
	sales  ports.SaleRepository
	ctx    context.Context
}

func (s *ItemRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.items = db.NewItemRepository(s.testDB.Database, helpers.TestLogger())
	s.sales = db.NewSaleRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *ItemRepositorySuite) TearDownSuite() {
	// Cleanup handled by helpers.SetupTestDB
}

func (s *ItemRepositorySuite) SetupTest() {
	// Clear data before each test
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *ItemRepositorySuite) TestSave() {
	item := helpers.CreateTestInventoryItem()

	err := s.items.Save(s.ctx, item)
	s.NoError(err)

	saved, err := s.items.FindByID(s.ctx, item.ItemID)
	s.NoError(err)
	s.NotNil(saved)
	helpers.CompareInventoryItems(s.T(), item, saved)
	s.Nil(saved.MinWholesalePrice)
	s.Nil(saved.MinRetailPrice)
}

func (s *ItemRepositorySuite) TestSavePreservesMinPrices() {
	minWholesale := decimal.NewFromInt(46200)
	minRetail := decimal.NewFromInt(47800)
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.MinWholesalePrice = &minWholesale
		i.MinRetailPrice = &minRetail
	})

	s.NoError(s.items.Save(s.ctx, item))

	saved, err := s.items.FindByID(s.ctx, item.ItemID)
	s.NoError(err)
	s.Require().NotNil(saved.MinWholesalePrice)
	s.Require().NotNil(saved.MinRetailPrice)
	s.True(saved.MinWholesalePrice.Equal(minWholesale))
	s.True(saved.MinRetailPrice.Equal(minRetail))
}

func (s *ItemRepositorySuite) TestSaveDuplicateBrandModel() {
	first := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, first))

	// Case differences still collide on the partial unique index
	dup := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ItemID = uuid.New()
		i.Model = "GALAXY S24"
		i.IMEI = "356789104563299"
	})

	err := s.items.Save(s.ctx, dup)
	var dupErr *domain.DuplicateItemError
	s.Require().ErrorAs(err, &dupErr)
	s.Require().NotNil(dupErr.Existing)
	s.Equal(first.ItemID, dupErr.Existing.ItemID)
}

func (s *ItemRepositorySuite) TestSaveDuplicateAllowedWhenArchived() {
	archived := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.IsArchived = true
	})
	s.NoError(s.items.Save(s.ctx, archived))

	active := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ItemID = uuid.New()
		i.IMEI = "356789104563299"
	})
	s.NoError(s.items.Save(s.ctx, active))
}

func (s *ItemRepositorySuite) TestFindByIDNotFound() {
	_, err := s.items.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestFindByBrandModel() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	found, err := s.items.FindByBrandModel(s.ctx, "samsung", "galaxy s24")
	s.NoError(err)
	s.Equal(item.ItemID, found.ItemID)

	_, err = s.items.FindByBrandModel(s.ctx, domain.BrandApple, "Galaxy S24")
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestFindByBrandModelIgnoresArchived() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.IsArchived = true
	})
	s.NoError(s.items.Save(s.ctx, item))

	_, err := s.items.FindByBrandModel(s.ctx, domain.BrandSamsung, "Galaxy S24")
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) seedCatalog() {
	items := helpers.CreateTestInventoryItems(12)
	helpers.SeedTestData(s.T(), s.testDB.PgxPool, items)
}

func (s *ItemRepositorySuite) TestFindAllPagination() {
	s.seedCatalog()

	page1, total, err := s.items.FindAll(s.ctx, ports.ListParams{Page: 1, Limit: 5})
	s.NoError(err)
	s.Equal(int64(12), total)
	s.Len(page1, 5)

	page3, total, err := s.items.FindAll(s.ctx, ports.ListParams{Page: 3, Limit: 5})
	s.NoError(err)
	s.Equal(int64(12), total)
	s.Len(page3, 2)
}

func (s *ItemRepositorySuite) TestFindAllFilters() {
	s.seedCatalog()

	byBrand, total, err := s.items.FindAll(s.ctx, ports.ListParams{
		Brand: string(domain.BrandSamsung),
		Page:  1, Limit: 20,
	})
	s.NoError(err)
	s.NotEmpty(byBrand)
	s.Equal(int64(len(byBrand)), total)
	for _, item := range byBrand {
		s.Equal(domain.BrandSamsung, item.Brand)
	}

	byStatus, _, err := s.items.FindAll(s.ctx, ports.ListParams{
		Status: string(domain.StatusLow),
		Page:   1, Limit: 20,
	})
	s.NoError(err)
	for _, item := range byStatus {
		s.Equal(domain.StatusLow, item.Status)
	}

	minPrice := decimal.NewFromInt(40000)
	priced, _, err := s.items.FindAll(s.ctx, ports.ListParams{
		MinPrice: &minPrice,
		Page:     1, Limit: 20,
	})
	s.NoError(err)
	for _, item := range priced {
		s.True(item.SellingPrice.GreaterThanOrEqual(minPrice))
	}
}

func (s *ItemRepositorySuite) TestFindAllSearchTerm() {
	s.seedCatalog()

	matches, total, err := s.items.FindAll(s.ctx, ports.ListParams{
		Search: "Test Model 3",
		Page:   1, Limit: 20,
	})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(matches, 1)
	s.Equal("Test Model 3", matches[0].Model)

	byBrand, total, err := s.items.FindAll(s.ctx, ports.ListParams{
		Search: "apple",
		Page:   1, Limit: 20,
	})
	s.NoError(err)
	s.Equal(int64(3), total)
	for _, item := range byBrand {
		s.Equal(domain.BrandApple, item.Brand)
	}

	// supplier and IMEI text is out of scope for list filtering
	_, total, err = s.items.FindAll(s.ctx, ports.ListParams{
		Search: "Mahavir",
		Page:   1, Limit: 20,
	})
	s.NoError(err)
	s.Zero(total)

	_, total, err = s.items.FindAll(s.ctx, ports.ListParams{
		Search: "35678910456",
		Page:   1, Limit: 20,
	})
	s.NoError(err)
	s.Zero(total)
}

func (s *ItemRepositorySuite) TestFindAllArchivedVisibility() {
	active := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, active))
	archived := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ItemID = uuid.New()
		i.Model = "Pixel 8a"
		i.Brand = domain.BrandGoogle
		i.IMEI = "356789104563300"
		i.IsArchived = true
	})
	s.NoError(s.items.Save(s.ctx, archived))

	defaultView, total, err := s.items.FindAll(s.ctx, ports.ListParams{Page: 1, Limit: 20})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Len(defaultView, 1)
	s.False(defaultView[0].IsArchived)

	everything, total, err := s.items.FindAll(s.ctx, ports.ListParams{
		IncludeArchived: true,
		Page:            1, Limit: 20,
	})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(everything, 2)

	onlyArchived, total, err := s.items.FindAll(s.ctx, ports.ListParams{
		ArchivedOnly: true,
		Page:         1, Limit: 20,
	})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(onlyArchived, 1)
	s.True(onlyArchived[0].IsArchived)
}

func (s *ItemRepositorySuite) TestFindAllSortByQuantity() {
	s.seedCatalog()

	sorted, _, err := s.items.FindAll(s.ctx, ports.ListParams{
		SortBy:    "quantity",
		SortOrder: "asc",
		Page:      1, Limit: 20,
	})
	s.NoError(err)
	s.Require().NotEmpty(sorted)
	for i := 1; i < len(sorted); i++ {
		s.LessOrEqual(sorted[i-1].Quantity, sorted[i].Quantity)
	}
}

func (s *ItemRepositorySuite) TestUpdatePartial() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	newPrice := decimal.NewFromInt(54000)
	newQty := 2
	updated, err := s.items.Update(s.ctx, item.ItemID, &domain.ItemUpdate{
		SellingPrice: &newPrice,
		Quantity:     &newQty,
	})
	s.NoError(err)
	s.True(updated.SellingPrice.Equal(newPrice))
	s.Equal(2, updated.Quantity)
	s.Equal(domain.StatusLow, updated.Status)
	// Untouched fields keep their values
	s.Equal(item.Model, updated.Model)
	s.True(updated.PurchasePrice.Equal(item.PurchasePrice))
}

func (s *ItemRepositorySuite) TestUpdateClearsMinPrices() {
	minWholesale := decimal.NewFromInt(46200)
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.MinWholesalePrice = &minWholesale
	})
	s.NoError(s.items.Save(s.ctx, item))

	updated, err := s.items.Update(s.ctx, item.ItemID, &domain.ItemUpdate{
		ClearMinWholesale: true,
	})
	s.NoError(err)
	s.Nil(updated.MinWholesalePrice)
}

func (s *ItemRepositorySuite) TestUpdateNotFound() {
	newModel := "Pixel 8a"
	_, err := s.items.Update(s.ctx, uuid.New(), &domain.ItemUpdate{Model: &newModel})
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestSellDecrementsAndRecordsSale() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Quantity = 6
	})
	s.NoError(s.items.Save(s.ctx, item))

	sale := helpers.CreateTestSale(item.ItemID, func(sl *domain.Sale) {
		sl.CustomerPhoto = domain.ImageRef{
			URL:        "https://cdn.example.com/customers/c.png",
			ExternalID: "customers/c",
		}
	})

	updated, err := s.items.Sell(s.ctx, item.ItemID, sale)
	s.NoError(err)
	s.Equal(5, updated.Quantity)
	s.Equal(domain.StatusLow, updated.Status)

	count, err := s.sales.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), count)

	history, err := s.sales.FindAll(s.ctx, ports.SaleListParams{})
	s.NoError(err)
	s.Require().Len(history, 1)
	s.Equal(sale.SaleID, history[0].SaleID)
	s.Equal("Ravi Kumar", history[0].CustomerName)
	s.Require().NotNil(history[0].Item)
	s.Equal(item.Model, history[0].Item.Model)
}

func (s *ItemRepositorySuite) TestSellLastUnit() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Quantity = 1
		i.Status = domain.StatusLow
	})
	s.NoError(s.items.Save(s.ctx, item))

	updated, err := s.items.Sell(s.ctx, item.ItemID, helpers.CreateTestSale(item.ItemID))
	s.NoError(err)
	s.Equal(0, updated.Quantity)
	s.Equal(domain.StatusOutOfStock, updated.Status)

	_, err = s.items.Sell(s.ctx, item.ItemID, helpers.CreateTestSale(item.ItemID))
	s.ErrorIs(err, domain.ErrOutOfStock)

	// The failed sell must not leave a sale row behind
	count, err := s.sales.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *ItemRepositorySuite) TestSellArchivedItem() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.IsArchived = true
	})
	s.NoError(s.items.Save(s.ctx, item))

	_, err := s.items.Sell(s.ctx, item.ItemID, helpers.CreateTestSale(item.ItemID))
	var validationErr *domain.ValidationError
	s.ErrorAs(err, &validationErr)
}

func (s *ItemRepositorySuite) TestSellNotFound() {
	missing := uuid.New()
	_, err := s.items.Sell(s.ctx, missing, helpers.CreateTestSale(missing))
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestRestock() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Quantity = 0
		i.Status = domain.StatusOutOfStock
	})
	s.NoError(s.items.Save(s.ctx, item))

	updated, err := s.items.Restock(s.ctx, item.ItemID, 3)
	s.NoError(err)
	s.Equal(3, updated.Quantity)
	s.Equal(domain.StatusLow, updated.Status)

	updated, err = s.items.Restock(s.ctx, item.ItemID, 10)
	s.NoError(err)
	s.Equal(13, updated.Quantity)
	s.Equal(domain.StatusInStock, updated.Status)
}

func (s *ItemRepositorySuite) TestRestockNotFound() {
	_, err := s.items.Restock(s.ctx, uuid.New(), 5)
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestSetArchived() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	archived, err := s.items.SetArchived(s.ctx, item.ItemID, true)
	s.NoError(err)
	s.True(archived.IsArchived)

	restored, err := s.items.SetArchived(s.ctx, item.ItemID, false)
	s.NoError(err)
	s.False(restored.IsArchived)
}

func (s *ItemRepositorySuite) TestUnarchiveConflict() {
	original := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, original))

	_, err := s.items.SetArchived(s.ctx, original.ItemID, true)
	s.NoError(err)

	// Archiving freed the brand+model slot for a fresh listing
	relisted := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ItemID = uuid.New()
		i.IMEI = "356789104563299"
	})
	s.NoError(s.items.Save(s.ctx, relisted))

	_, err = s.items.SetArchived(s.ctx, original.ItemID, false)
	var dupErr *domain.DuplicateItemError
	s.ErrorAs(err, &dupErr)
}

func (s *ItemRepositorySuite) TestDelete() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	s.NoError(s.items.Delete(s.ctx, item.ItemID))

	_, err := s.items.FindByID(s.ctx, item.ItemID)
	s.ErrorIs(err, domain.ErrItemNotFound)

	s.ErrorIs(s.items.Delete(s.ctx, item.ItemID), domain.ErrItemNotFound)
}

func (s *ItemRepositorySuite) TestDeleteKeepsSaleHistory() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	_, err := s.items.Sell(s.ctx, item.ItemID, helpers.CreateTestSale(item.ItemID))
	s.NoError(err)

	s.NoError(s.items.Delete(s.ctx, item.ItemID))

	history, err := s.sales.FindAll(s.ctx, ports.SaleListParams{})
	s.NoError(err)
	s.Require().Len(history, 1)
	s.Nil(history[0].Item)
}

func (s *ItemRepositorySuite) TestSearch() {
	s.seedCatalog()
	extra := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ItemID = uuid.New()
		i.Model = "Redmi Note 13 Pro"
		i.Brand = domain.BrandXiaomi
		i.IMEI = "356789104563300"
		i.Color = "Arctic White"
	})
	s.NoError(s.items.Save(s.ctx, extra))

	byModel, err := s.items.Search(s.ctx, "redmi note")
	s.NoError(err)
	s.Require().Len(byModel, 1)
	s.Equal(extra.ItemID, byModel[0].ItemID)

	byColor, err := s.items.Search(s.ctx, "arctic")
	s.NoError(err)
	s.Len(byColor, 1)

	none, err := s.items.Search(s.ctx, "nonexistent phone")
	s.NoError(err)
	s.Empty(none)
}

func (s *ItemRepositorySuite) TestSearchExcludesArchived() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.IsArchived = true
	})
	s.NoError(s.items.Save(s.ctx, item))

	results, err := s.items.Search(s.ctx, "galaxy")
	s.NoError(err)
	s.Empty(results)
}

func (s *ItemRepositorySuite) TestStats() {
	items := []domain.InventoryItem{
		*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.Model = "Galaxy S24"
			i.Brand = domain.BrandSamsung
			i.Quantity = 10
			i.PurchasePrice = decimal.NewFromInt(45000)
			i.SellingPrice = decimal.NewFromInt(52000)
			i.Status = domain.StatusInStock
		}),
		*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.ItemID = uuid.New()
			i.Model = "iPhone 15"
			i.Brand = domain.BrandApple
			i.IMEI = "356789104563300"
			i.Quantity = 2
			i.PurchasePrice = decimal.NewFromInt(60000)
			i.SellingPrice = decimal.NewFromInt(72000)
			i.Status = domain.StatusLow
		}),
		*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.ItemID = uuid.New()
			i.Model = "Pixel 8a"
			i.Brand = domain.BrandGoogle
			i.IMEI = "356789104563301"
			i.Quantity = 4
			i.PurchasePrice = decimal.NewFromInt(35000)
			i.SellingPrice = decimal.NewFromInt(40000)
			i.Status = domain.StatusLow
			i.IsArchived = true
		}),
	}
	helpers.SeedTestData(s.T(), s.testDB.PgxPool, items)

	stats, err := s.items.Stats(s.ctx)
	s.NoError(err)

	// Archived Pixel is excluded everywhere
	s.Equal(int64(2), stats.TotalItems)
	s.Equal(int64(12), stats.TotalQuantity)
	s.True(stats.TotalPurchaseValue.Equal(decimal.NewFromInt(10*45000+2*60000)),
		"purchase value: %s", stats.TotalPurchaseValue)
	s.True(stats.TotalSellingValue.Equal(decimal.NewFromInt(10*52000+2*72000)),
		"selling value: %s", stats.TotalSellingValue)
	s.True(stats.PotentialProfit.Equal(stats.TotalSellingValue.Sub(stats.TotalPurchaseValue)))

	s.Len(stats.BrandDistribution, 2)
	s.Equal(domain.BrandSamsung, stats.BrandDistribution[0].Brand)
	s.Equal(int64(10), stats.BrandDistribution[0].TotalQuantity)

	s.Len(stats.StatusDistribution, 2)

	s.Require().NotNil(stats.BestSelling)
	s.Equal("Galaxy S24", stats.BestSelling.Model)
	s.Equal(10, stats.BestSelling.Quantity)
}

func (s *ItemRepositorySuite) TestStatsEmptyInventory() {
	stats, err := s.items.Stats(s.ctx)
	s.NoError(err)
	s.Equal(int64(0), stats.TotalItems)
	s.Equal(int64(0), stats.TotalQuantity)
	s.True(stats.PotentialProfit.IsZero())
	s.Empty(stats.BrandDistribution)
	s.Nil(stats.BestSelling)
}

func (s *ItemRepositorySuite) TestConcurrentSells() {
	item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Quantity = 3
	})
	s.NoError(s.items.Save(s.ctx, item))

	const attempts = 8
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func(n int) {
			sale := helpers.CreateTestSale(item.ItemID, func(sl *domain.Sale) {
				sl.CustomerName = fmt.Sprintf("Customer %d", n)
			})
			_, err := s.items.Sell(s.ctx, item.ItemID, sale)
			results <- err
		}(i)
	}

	var sold, outOfStock int
	for i := 0; i < attempts; i++ {
		switch err := <-results; {
		case err == nil:
			sold++
		case err == domain.ErrOutOfStock:
			outOfStock++
		default:
			s.FailNow("unexpected sell error", err)
		}
	}

	s.Equal(3, sold)
	s.Equal(attempts-3, outOfStock)

	final, err := s.items.FindByID(s.ctx, item.ItemID)
	s.NoError(err)
	s.Equal(0, final.Quantity)

	count, err := s.sales.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(3), count)
}

func TestItemRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(ItemRepositorySuite))
}
