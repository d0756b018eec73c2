package benchmarks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	redis_a "github.com/takeoneapp/takeone-be/internal/adapters/redis_adapter"
	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
	"github.com/takeoneapp/takeone-be/internal/core/services"
	"github.com/takeoneapp/takeone-be/test/helpers"
)

func BenchmarkInventoryOperations(b *testing.B) {
	// Setup
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	testRedis := helpers.SetupTestRedis(&testing.T{})

	itemRepo := db.NewItemRepository(testDB.Database, helpers.TestLogger())
	saleRepo := db.NewSaleRepository(testDB.Database, helpers.TestLogger())
	cache := redis_a.NewCache(testRedis.Client, 0, helpers.TestLogger())
	service := services.NewInventoryService(
		itemRepo, saleRepo, newMemoryImageStore(), cache, nil, helpers.TestLogger())
	ctx := context.Background()

	b.Run("Create", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.CreateItem(ctx, makeBenchItem(i), nil)
		}
	})

	// Pre-create items for read benchmarks
	var itemIDs []uuid.UUID
	for i := 0; i < 100; i++ {
		item := makeBenchItem(1_000_000 + i)
		if _, err := service.CreateItem(ctx, item, nil); err == nil {
			itemIDs = append(itemIDs, item.ItemID)
		}
	}

	b.Run("Read", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id := itemIDs[i%len(itemIDs)]
			_, _ = service.GetItemByID(ctx, id)
		}
	})

	b.Run("List", func(b *testing.B) {
		params := ports.ListParams{
			Page:  1,
			Limit: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.GetAllItems(ctx, params)
		}
	})

	b.Run("FilteredList", func(b *testing.B) {
		params := ports.ListParams{
			Brand:  string(domain.BrandSamsung),
			Status: string(domain.StatusInStock),
			Page:   1,
			Limit:  50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.GetAllItems(ctx, params)
		}
	})

	b.Run("Search", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.SearchItems(ctx, "bench")
		}
	})

	b.Run("Stats", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.GetStats(ctx)
		}
	})

	b.Run("Restock", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id := itemIDs[i%len(itemIDs)]
			_, _ = service.RestockItem(ctx, id, 1)
		}
	})
}

func BenchmarkFloorPriceCheck(b *testing.B) {
	minRetail := decimal.NewFromInt(47500)
	item := &domain.InventoryItem{
		PurchasePrice:  decimal.NewFromInt(45000),
		MinRetailPrice: &minRetail,
	}
	price := decimal.NewFromInt(51000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = domain.CheckSalePrice(item, domain.SaleTypeRetail, price)
	}
}

func BenchmarkStatusForQuantity(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = domain.StatusForQuantity(i % 20)
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("InventoryItem", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = &domain.InventoryItem{
				ItemID:        uuid.New(),
				Model:         "Galaxy S24",
				Brand:         domain.BrandSamsung,
				Quantity:      8,
				PurchasePrice: decimal.NewFromInt(45000),
				SellingPrice:  decimal.NewFromInt(52000),
			}
		}
	})

	b.Run("ListResult", func(b *testing.B) {
		items := make([]*domain.InventoryItem, 100)
		for i := range items {
			items[i] = makeBenchItem(i)
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.ListResult{
				Items:      items,
				Page:       1,
				Limit:      50,
				Total:      100,
				TotalPages: 2,
			}
		}
	})
}
