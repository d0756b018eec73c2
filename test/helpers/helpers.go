// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_inventory",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_inventory",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_inventory",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Upload: config.UploadConfig{
			MaxImageSizeMB: 10,
			PresignTTL:     15 * time.Minute,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestInventoryItem creates a test inventory item
func CreateTestInventoryItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	item := &domain.InventoryItem{
		ItemID:        uuid.New(),
		Model:         "Galaxy S24",
		Brand:         domain.BrandSamsung,
		IMEI:          "356789104563218",
		PurchasePrice: decimal.NewFromInt(45000),
		SellingPrice:  decimal.NewFromInt(52000),
		Quantity:      8,
		Supplier:      "Mahavir Distributors",
		PurchaseDate:  time.Now().AddDate(0, -1, 0),
		Status:        domain.StatusInStock,
		Color:         "Onyx Black",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestInventoryItems creates multiple distinct test inventory items
func CreateTestInventoryItems(count int) []domain.InventoryItem {
	items := make([]domain.InventoryItem, count)

	brands := []domain.Brand{
		domain.BrandApple,
		domain.BrandSamsung,
		domain.BrandXiaomi,
		domain.BrandOnePlus,
		domain.BrandVivo,
	}

	for i := 0; i < count; i++ {
		items[i] = *CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.ItemID = uuid.New()
			item.Model = fmt.Sprintf("Test Model %d", i+1)
			item.Brand = brands[i%len(brands)]
			item.IMEI = fmt.Sprintf("35678910456%04d", i+1)
			item.Quantity = (i % 10) + 1
			item.Status = domain.StatusForQuantity(item.Quantity)
			item.PurchasePrice = decimal.NewFromInt(int64(20000 + i*5000))
			item.SellingPrice = decimal.NewFromInt(int64(25000 + i*5000))
		})
	}

	return items
}

// CreateTestSale creates a sale record for the given item
func CreateTestSale(itemID uuid.UUID, overrides ...func(*domain.Sale)) *domain.Sale {
	sale := &domain.Sale{
		SaleID:       uuid.New(),
		ItemID:       itemID,
		CustomerName: "Ravi Kumar",
		IMEI:         "356789104563218",
		SalePrice:    decimal.NewFromInt(51000),
		SaleType:     domain.SaleTypeRetail,
		SaleDate:     time.Now(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	for _, override := range overrides {
		override(sale)
	}

	return sale
}

// CompareInventoryItems compares two inventory items for testing
func CompareInventoryItems(t *testing.T, expected, actual *domain.InventoryItem) {
	t.Helper()

	require.Equal(t, expected.Model, actual.Model)
	require.Equal(t, expected.Brand, actual.Brand)
	require.Equal(t, expected.IMEI, actual.IMEI)
	require.Equal(t, expected.Quantity, actual.Quantity)
	require.Equal(t, expected.Status, actual.Status)
	require.Equal(t, expected.Supplier, actual.Supplier)
	require.Equal(t, expected.Color, actual.Color)
	require.True(t, expected.PurchasePrice.Equal(actual.PurchasePrice))
	require.True(t, expected.SellingPrice.Equal(actual.SellingPrice))
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"sales",
		"items",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestData seeds the database with test items
func SeedTestData(t *testing.T, db *pgxpool.Pool, items []domain.InventoryItem) {
	t.Helper()

	ctx := context.Background()

	for _, item := range items {
		query := `
			INSERT INTO items (
				item_id, model, brand, imei, purchase_price, selling_price,
				quantity, min_wholesale_price, min_retail_price, supplier,
				purchase_date, status, color, image_url, image_external_id,
				is_archived, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`

		_, err := db.Exec(ctx, query,
			item.ItemID, item.Model, item.Brand, item.IMEI,
			item.PurchasePrice, item.SellingPrice, item.Quantity,
			item.MinWholesalePrice, item.MinRetailPrice, item.Supplier,
			item.PurchaseDate, item.Status, item.Color,
			item.Image.URL, item.Image.ExternalID,
			item.IsArchived, item.CreatedAt, item.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed test data")
	}
}

// PNGImageBytes returns a minimal valid PNG for upload tests
func PNGImageBytes() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}
}
