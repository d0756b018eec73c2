// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// ItemLoader parses seed files into inventory items
type ItemLoader struct {
	logger *slog.Logger
}

func NewItemLoader(logger *slog.Logger) *ItemLoader {
	return &ItemLoader{logger: logger}
}

// Expected sheet columns, in order:
// Model | Brand | IMEI | Purchase Price | Selling Price | Quantity |
// Min Wholesale Price | Min Retail Price | Supplier | Purchase Date | Color
const (
	colModel = iota
	colBrand
	colIMEI
	colPurchasePrice
	colSellingPrice
	colQuantity
	colMinWholesale
	colMinRetail
	colSupplier
	colPurchaseDate
	colColor
)

// LoadFromExcel reads inventory rows from the first sheet of an xlsx file.
// Rows with a missing model or brand are skipped with a warning rather than
// aborting the whole run.
func (l *ItemLoader) LoadFromExcel(path string) ([]*domain.InventoryItem, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in seed file")
	}
	sheet := file.Sheets[0]

	var items []*domain.InventoryItem
	rowIdx := 0
	skipped := 0

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		model := get(colModel)
		brand := domain.Brand(get(colBrand))
		if model == "" || brand == "" {
			return nil
		}
		if !brand.IsValid() {
			l.logger.Warn("skipping row with unsupported brand",
				slog.Int("row", rowIdx),
				slog.String("brand", string(brand)))
			skipped++
			return nil
		}

		item := &domain.InventoryItem{
			Model:         model,
			Brand:         brand,
			IMEI:          get(colIMEI),
			PurchasePrice: parsePrice(get(colPurchasePrice)),
			SellingPrice:  parsePrice(get(colSellingPrice)),
			Quantity:      parseQuantity(get(colQuantity)),
			Supplier:      get(colSupplier),
			Color:         get(colColor),
		}
		if v := get(colMinWholesale); v != "" {
			p := parsePrice(v)
			item.MinWholesalePrice = &p
		}
		if v := get(colMinRetail); v != "" {
			p := parsePrice(v)
			item.MinRetailPrice = &p
		}
		if v := get(colPurchaseDate); v != "" {
			if d, err := time.Parse("2006-01-02", v); err == nil {
				item.PurchaseDate = d
			}
		}

		item.PrepareForStorage()

		if err := item.Validate(); err != nil {
			l.logger.Warn("skipping invalid row",
				slog.Int("row", rowIdx),
				slog.String("model", model),
				slog.String("error", err.Error()))
			skipped++
			return nil
		}

		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	l.logger.Info("loaded items from seed file",
		slog.String("file", path),
		slog.Int("count", len(items)),
		slog.Int("skipped", skipped))
	return items, nil
}

// sampleCatalog is used when no seed file is provided. Prices in rupees.
var sampleCatalog = []struct {
	model    string
	brand    domain.Brand
	purchase string
	selling  string
	quantity int
	supplier string
	color    string
}{
	{"iPhone 15", domain.BrandApple, "62000", "71500", 12, "Redington India", "Midnight"},
	{"iPhone 14", domain.BrandApple, "48000", "56000", 4, "Redington India", "Starlight"},
	{"Galaxy S24", domain.BrandSamsung, "45000", "52000", 8, "Mahavir Distributors", "Onyx Black"},
	{"Galaxy A55", domain.BrandSamsung, "24000", "28500", 15, "Mahavir Distributors", "Awesome Navy"},
	{"Pixel 8a", domain.BrandGoogle, "34000", "39999", 6, "Ingram Micro", "Obsidian"},
	{"Redmi Note 13 Pro", domain.BrandXiaomi, "16500", "19999", 22, "Sai Mobiles Wholesale", "Fusion Purple"},
	{"OnePlus 12R", domain.BrandOnePlus, "33000", "38500", 5, "Ingram Micro", "Cool Blue"},
	{"Moto Edge 50", domain.BrandMotorola, "21000", "25500", 0, "Sai Mobiles Wholesale", "Jungle Green"},
	{"Vivo V30", domain.BrandVivo, "27000", "31500", 9, "Balaji Telecom", "Peacock Green"},
	{"Oppo Reno 11", domain.BrandOppo, "24500", "29000", 3, "Balaji Telecom", "Wave Green"},
	{"iQOO Neo 9 Pro", domain.BrandIQOO, "30000", "35500", 7, "Sai Mobiles Wholesale", "Conqueror Black"},
}

// GenerateSample builds a deterministic set of demo items
func (l *ItemLoader) GenerateSample() []*domain.InventoryItem {
	items := make([]*domain.InventoryItem, 0, len(sampleCatalog))
	for i, s := range sampleCatalog {
		purchase := decimal.RequireFromString(s.purchase)
		minWholesale := purchase.Add(decimal.NewFromInt(500))
		minRetail := purchase.Add(decimal.NewFromInt(1000))

		item := &domain.InventoryItem{
			Model:             s.model,
			Brand:             s.brand,
			IMEI:              fmt.Sprintf("3567891045632%02d", i),
			PurchasePrice:     purchase,
			SellingPrice:      decimal.RequireFromString(s.selling),
			Quantity:          s.quantity,
			MinWholesalePrice: &minWholesale,
			MinRetailPrice:    &minRetail,
			Supplier:          s.supplier,
			PurchaseDate:      time.Now().AddDate(0, 0, -(i * 3)),
			Color:             s.color,
		}
		item.PrepareForStorage()
		items = append(items, item)
	}

	l.logger.Info("generated sample items", slog.Int("count", len(items)))
	return items
}

// SaveItems persists inventory items in a single batched transaction.
// Rows that collide with an existing active brand+model are skipped.
func SaveItems(ctx context.Context, db *pgxpool.Pool, items []*domain.InventoryItem, logger *slog.Logger) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO items (
				item_id, model, brand, imei, purchase_price, selling_price,
				quantity, min_wholesale_price, min_retail_price, supplier,
				purchase_date, status, color, image_url, image_external_id,
				is_archived, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18
			) ON CONFLICT DO NOTHING`,
			item.ItemID, item.Model, item.Brand, item.IMEI,
			item.PurchasePrice, item.SellingPrice, item.Quantity,
			item.MinWholesalePrice, item.MinRetailPrice, item.Supplier,
			item.PurchaseDate, item.Status, item.Color,
			item.Image.URL, item.Image.ExternalID,
			item.IsArchived, item.CreatedAt, item.UpdatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)

	inserted := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return inserted, fmt.Errorf("failed to insert item: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := br.Close(); err != nil {
		return inserted, fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return inserted, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info("saved items to database",
		slog.Int("inserted", inserted),
		slog.Int("duplicates_skipped", len(items)-inserted))
	return inserted, nil
}

func parsePrice(val string) decimal.Decimal {
	cleaned := strings.ReplaceAll(val, "₹", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseQuantity(val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func main() {
	var (
		seedFile = flag.String("file", "", "Excel file with inventory rows (generates sample data when empty)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "takeone"),
		getEnv("DB_PASSWORD", "takeone_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "takeone_inventory"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	loader := NewItemLoader(logger)

	var items []*domain.InventoryItem
	if *seedFile != "" {
		items, err = loader.LoadFromExcel(*seedFile)
		if err != nil {
			logger.Error("failed to load seed file", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		items = loader.GenerateSample()
	}

	if len(items) == 0 {
		logger.Warn("nothing to seed")
		return
	}

	inserted := len(items)
	if !*dryRun {
		inserted, err = SaveItems(ctx, db, items, logger)
		if err != nil {
			logger.Error("failed to save items", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Items Prepared: %d\n", len(items))
	fmt.Printf("Items Inserted: %d\n", inserted)
	for _, item := range items {
		fmt.Printf("  - %s %s (qty %d, %s)\n", item.Brand, item.Model, item.Quantity, item.Status)
	}

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}

	logger.Info("seed operation completed",
		slog.Int("items_prepared", len(items)),
		slog.Int("items_inserted", inserted))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
