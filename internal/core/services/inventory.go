// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// Cache keys and TTLs used by the inventory service
const (
	StatsCacheKey   = "stats:summary"
	StatsCacheTTL   = 5 * time.Minute
	searchCacheTTL  = time.Minute
	itemsKeyPattern = "items:*"
	statsKeyPattern = "stats:*"
	queryKeyPattern = "search:*"
)

// InventoryService handles inventory business logic. It is the only writer
// of item state and owns the image lifecycle around each mutation.
type InventoryService struct {
	items  ports.ItemRepository
	sales  ports.SaleRepository
	images ports.ImageStore
	cache  ports.CacheRepository
	tasks  ports.TaskDispatcher
	logger *slog.Logger
}

var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(
	items ports.ItemRepository,
	sales ports.SaleRepository,
	images ports.ImageStore,
	cache ports.CacheRepository,
	tasks ports.TaskDispatcher,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		items:  items,
		sales:  sales,
		images: images,
		cache:  cache,
		tasks:  tasks,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// CreateItem validates and persists a new item. When image bytes are
// provided the image is uploaded first so the stored record never points
// at a missing object.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.InventoryItem, image []byte) (*domain.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.items.FindByBrandModel(ctx, item.Brand, item.Model)
	if err != nil && !errors.Is(err, domain.ErrItemNotFound) {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if existing != nil {
		return nil, &domain.DuplicateItemError{Existing: existing}
	}

	item.PrepareForStorage()

	if len(image) > 0 {
		ref, err := s.images.Upload(ctx, image, ports.ImageFolderInventory)
		if err != nil {
			return nil, err
		}
		item.Image = ref
	}

	if err := s.items.Save(ctx, item); err != nil {
		// The insert failed after the upload: reclaim the orphan object
		s.releaseImage(ctx, item.Image)
		return nil, err
	}

	s.invalidateCaches(ctx)

	s.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ItemID.String()),
		slog.String("brand", string(item.Brand)),
		slog.String("model", item.Model))

	return item, nil
}

// GetAllItems lists items with filtering and pagination
func (s *InventoryService) GetAllItems(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
	params.Normalize()

	items, total, err := s.items.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return &ports.ListResult{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetItemByID retrieves a single item
func (s *InventoryService) GetItemByID(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error) {
	return s.items.FindByID(ctx, itemID)
}

// UpdateItem applies a partial update. A new image replaces the old one;
// the old object is released only after the database accepted the change.
func (s *InventoryService) UpdateItem(ctx context.Context, itemID uuid.UUID, update *domain.ItemUpdate, image []byte) (*domain.InventoryItem, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	current, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() && len(image) == 0 {
		return current, nil
	}

	oldImage := current.Image
	if len(image) > 0 {
		ref, err := s.images.Upload(ctx, image, ports.ImageFolderInventory)
		if err != nil {
			return nil, err
		}
		update.Image = &ref
	}

	item, err := s.items.Update(ctx, itemID, update)
	if err != nil {
		if update.Image != nil {
			s.releaseImage(ctx, *update.Image)
		}
		return nil, err
	}

	if update.Image != nil && !oldImage.IsZero() {
		s.releaseImage(ctx, oldImage)
	}

	s.invalidateCaches(ctx)

	s.logger.InfoContext(ctx, "item updated",
		slog.String("item_id", itemID.String()))

	return item, nil
}

// DeleteItem removes an item permanently. Sale history keeps its rows; the
// join layer labels them as deleted.
func (s *InventoryService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}

	s.releaseImage(ctx, item.Image)
	s.invalidateCaches(ctx)

	s.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()))

	return nil
}

// SearchItems performs a free-text search over active items
func (s *InventoryService) SearchItems(ctx context.Context, query string) ([]*domain.InventoryItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("search query is required")
	}

	var items []*domain.InventoryItem
	key := "search:" + strings.ToLower(query)
	err := s.cache.GetOrSet(ctx, key, &items, func() (interface{}, error) {
		return s.items.Search(ctx, query)
	}, searchCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	return items, nil
}

// GetStats returns the dashboard aggregates, memoized for a few minutes
func (s *InventoryService) GetStats(ctx context.Context) (*domain.InventoryStats, error) {
	stats := &domain.InventoryStats{}
	err := s.cache.GetOrSet(ctx, StatsCacheKey, stats, func() (interface{}, error) {
		return s.computeStats(ctx)
	}, StatsCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}

// computeStats joins the item aggregates with the lifetime sales count
func (s *InventoryService) computeStats(ctx context.Context) (*domain.InventoryStats, error) {
	stats, err := s.items.Stats(ctx)
	if err != nil {
		return nil, err
	}

	soldCount, err := s.sales.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalSales = soldCount

	return stats, nil
}

// SellItem validates the sale, stores the customer photo, and hands the
// atomic decrement-plus-record to the repository. A failed sale releases
// the photo it uploaded.
func (s *InventoryService) SellItem(ctx context.Context, itemID uuid.UUID, req ports.SellRequest, photo []byte) (*domain.InventoryItem, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	if strings.TrimSpace(req.IMEI) == "" {
		return nil, domain.NewValidationError("IMEI code is required")
	}
	if len(photo) == 0 {
		return nil, domain.NewValidationError("customer photo is required")
	}

	if err := domain.CheckSalePrice(item, req.SaleType, req.SalePrice); err != nil {
		return nil, err
	}

	photoRef, err := s.images.Upload(ctx, photo, ports.ImageFolderCustomers)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ItemID:        itemID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhoto: photoRef,
		IMEI:          strings.TrimSpace(req.IMEI),
		SalePrice:     req.SalePrice,
		SaleType:      req.SaleType,
	}
	sale.PrepareForStorage()

	if err := sale.Validate(); err != nil {
		s.releaseImage(ctx, photoRef)
		return nil, err
	}

	updated, err := s.items.Sell(ctx, itemID, sale)
	if err != nil {
		s.releaseImage(ctx, photoRef)
		return nil, err
	}

	s.invalidateCaches(ctx)
	s.invalidateSales(ctx)

	s.logger.InfoContext(ctx, "item sold",
		slog.String("item_id", itemID.String()),
		slog.String("sale_id", sale.SaleID.String()),
		slog.String("sale_type", string(sale.SaleType)),
		slog.String("sale_price", sale.SalePrice.String()))

	return updated, nil
}

// RestockItem adds stock to an item
func (s *InventoryService) RestockItem(ctx context.Context, itemID uuid.UUID, quantityToAdd int) (*domain.InventoryItem, error) {
	if quantityToAdd <= 0 {
		return nil, domain.NewValidationError("quantity to add must be positive")
	}

	item, err := s.items.Restock(ctx, itemID, quantityToAdd)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)

	s.logger.InfoContext(ctx, "item restocked",
		slog.String("item_id", itemID.String()),
		slog.Int("added", quantityToAdd))

	return item, nil
}

// ArchiveItem hides an item from active inventory without losing it
func (s *InventoryService) ArchiveItem(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error) {
	item, err := s.items.SetArchived(ctx, itemID, true)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return item, nil
}

// UnarchiveItem returns an archived item to active inventory
func (s *InventoryService) UnarchiveItem(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error) {
	item, err := s.items.SetArchived(ctx, itemID, false)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return item, nil
}

// UploadImage stores a standalone image in the inventory folder
func (s *InventoryService) UploadImage(ctx context.Context, data []byte) (domain.ImageRef, error) {
	return s.images.Upload(ctx, data, ports.ImageFolderInventory)
}

// DeleteImage removes a previously uploaded image
func (s *InventoryService) DeleteImage(ctx context.Context, externalID string) error {
	if strings.TrimSpace(externalID) == "" {
		return domain.NewValidationError("image id is required")
	}

	if err := s.images.Delete(ctx, externalID); err != nil {
		s.enqueueImageCleanup(ctx, externalID, err)
		return err
	}

	return nil
}

// releaseImage deletes a remote image, falling back to a queued retry when
// the remote call fails. Never fails the surrounding operation.
func (s *InventoryService) releaseImage(ctx context.Context, ref domain.ImageRef) {
	if ref.IsZero() {
		return
	}

	if err := s.images.Delete(ctx, ref.ExternalID); err != nil {
		s.enqueueImageCleanup(ctx, ref.ExternalID, err)
	}
}

func (s *InventoryService) enqueueImageCleanup(ctx context.Context, externalID string, cause error) {
	s.logger.WarnContext(ctx, "image delete failed, queueing cleanup",
		slog.String("external_id", externalID),
		slog.Any("error", cause))

	if s.tasks == nil {
		return
	}
	if err := s.tasks.EnqueueImageCleanup(ctx, externalID); err != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue image cleanup",
			slog.String("external_id", externalID),
			slog.Any("error", err))
	}
}

// invalidateCaches drops every cached view derived from item state
func (s *InventoryService) invalidateCaches(ctx context.Context) {
	for _, pattern := range []string{itemsKeyPattern, statsKeyPattern, queryKeyPattern} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate cache",
				slog.String("pattern", pattern),
				slog.Any("error", err))
		}
	}
}

func (s *InventoryService) invalidateSales(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "sales:*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate sales cache",
			slog.Any("error", err))
	}
}
