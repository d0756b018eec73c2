// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// memoryImageStore is an in-process ImageStore so service benchmarks never
// touch the network
type memoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	counter int
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{objects: make(map[string][]byte)}
}

func (s *memoryImageStore) Upload(ctx context.Context, data []byte, folder string) (domain.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	key := fmt.Sprintf("%s/bench-%d", folder, s.counter)
	s.objects[key] = data

	return domain.ImageRef{
		URL:        "https://bench.local/" + key,
		ExternalID: key,
	}, nil
}

func (s *memoryImageStore) Delete(ctx context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, externalID)
	return nil
}

// benchBrands cycles through the full brand set so filters and group-bys see
// realistic cardinality
var benchBrands = []domain.Brand{
	domain.BrandApple, domain.BrandSamsung, domain.BrandGoogle,
	domain.BrandXiaomi, domain.BrandOnePlus, domain.BrandMotorola,
	domain.BrandVivo, domain.BrandOppo, domain.BrandIQOO,
}

// makeBenchItem builds a distinct valid item for insertion benchmarks
func makeBenchItem(n int) *domain.InventoryItem {
	item := &domain.InventoryItem{
		Model:         fmt.Sprintf("Bench Model %d", n),
		Brand:         benchBrands[n%len(benchBrands)],
		IMEI:          fmt.Sprintf("3567891%08d", n),
		PurchasePrice: decimal.NewFromInt(int64(20000 + (n%20)*1000)),
		SellingPrice:  decimal.NewFromInt(int64(24000 + (n%20)*1000)),
		Quantity:      n%12 + 1,
		Supplier:      "Bench Distributors",
		Color:         "Graphite",
	}
	item.PrepareForStorage()
	return item
}
