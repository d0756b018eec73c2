// internal/workers/image_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/services"
	"github.com/takeoneapp/takeone-be/internal/workers"
	"github.com/takeoneapp/takeone-be/test/helpers"
	"github.com/takeoneapp/takeone-be/test/mocks"
)

func cleanupTask(t *testing.T, externalID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(workers.ImageCleanupPayload{ExternalID: externalID})
	require.NoError(t, err)
	return asynq.NewTask(workers.TypeImageCleanup, payload)
}

func TestImageCleanupProcessor_CleanupImage(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes_orphaned_image", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		images := mocks.NewMockImageStore(ctrl)
		processor := workers.NewImageCleanupProcessor(images, helpers.TestLogger())

		images.EXPECT().
			Delete(gomock.Any(), "inventory/orphan").
			Return(nil)

		err := processor.CleanupImage(ctx, cleanupTask(t, "inventory/orphan"))
		assert.NoError(t, err)
	})

	t.Run("returns_error_for_retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		images := mocks.NewMockImageStore(ctrl)
		processor := workers.NewImageCleanupProcessor(images, helpers.TestLogger())

		images.EXPECT().
			Delete(gomock.Any(), "inventory/orphan").
			Return(errors.New("s3 unavailable"))

		err := processor.CleanupImage(ctx, cleanupTask(t, "inventory/orphan"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inventory/orphan")
	})

	t.Run("skips_empty_external_id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		images := mocks.NewMockImageStore(ctrl)
		processor := workers.NewImageCleanupProcessor(images, helpers.TestLogger())

		err := processor.CleanupImage(ctx, cleanupTask(t, ""))
		assert.NoError(t, err)
	})

	t.Run("rejects_malformed_payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		images := mocks.NewMockImageStore(ctrl)
		processor := workers.NewImageCleanupProcessor(images, helpers.TestLogger())

		task := asynq.NewTask(workers.TypeImageCleanup, []byte("{broken"))
		err := processor.CleanupImage(ctx, task)
		assert.Error(t, err)
	})
}

func TestStatsProcessor_RefreshStats(t *testing.T) {
	ctx := context.Background()
	task := asynq.NewTask(workers.TypeStatsRefresh, nil)

	t.Run("rewarm_replaces_cached_copy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		items := mocks.NewMockItemRepository(ctrl)
		sales := mocks.NewMockSaleRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		processor := workers.NewStatsProcessor(items, sales, cache, helpers.TestLogger())

		stats := &domain.InventoryStats{
			TotalItems:      6,
			TotalQuantity:   42,
			PotentialProfit: decimal.NewFromInt(120000),
		}

		items.EXPECT().
			Stats(gomock.Any()).
			Return(stats, nil)
		sales.EXPECT().
			Count(gomock.Any()).
			Return(int64(17), nil)
		cache.EXPECT().
			SetWithTTL(gomock.Any(), services.StatsCacheKey, stats, services.StatsCacheTTL).
			DoAndReturn(func(_ context.Context, _ string, v any, _ time.Duration) error {
				assert.Equal(t, int64(17), v.(*domain.InventoryStats).TotalSales)
				return nil
			})

		assert.NoError(t, processor.RefreshStats(ctx, task))
	})

	t.Run("propagates_aggregation_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		items := mocks.NewMockItemRepository(ctrl)
		sales := mocks.NewMockSaleRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		processor := workers.NewStatsProcessor(items, sales, cache, helpers.TestLogger())

		items.EXPECT().
			Stats(gomock.Any()).
			Return(nil, errors.New("query failed"))

		assert.Error(t, processor.RefreshStats(ctx, task))
	})

	t.Run("propagates_cache_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		items := mocks.NewMockItemRepository(ctrl)
		sales := mocks.NewMockSaleRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		processor := workers.NewStatsProcessor(items, sales, cache, helpers.TestLogger())

		items.EXPECT().
			Stats(gomock.Any()).
			Return(&domain.InventoryStats{}, nil)
		sales.EXPECT().
			Count(gomock.Any()).
			Return(int64(0), nil)
		cache.EXPECT().
			SetWithTTL(gomock.Any(), services.StatsCacheKey, gomock.Any(), services.StatsCacheTTL).
			Return(errors.New("redis down"))

		assert.Error(t, processor.RefreshStats(ctx, task))
	})
}
