// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

const uniqueViolationCode = "23505"

// itemColumns is the canonical column order used by every item scan
var itemColumns = []string{
	"item_id", "model", "brand", "imei",
	"purchase_price", "selling_price", "quantity",
	"min_wholesale_price", "min_retail_price",
	"supplier", "purchase_date", "status", "color",
	"image_url", "image_external_id", "is_archived",
	"created_at", "updated_at",
}

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new inventory item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "items")),
	}
}

// scanItem scans one item row in itemColumns order
func scanItem(scan func(dest ...any) error) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	var minWholesale, minRetail decimal.NullDecimal

	err := scan(
		&item.ItemID, &item.Model, &item.Brand, &item.IMEI,
		&item.PurchasePrice, &item.SellingPrice, &item.Quantity,
		&minWholesale, &minRetail,
		&item.Supplier, &item.PurchaseDate, &item.Status, &item.Color,
		&item.Image.URL, &item.Image.ExternalID, &item.IsArchived,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if minWholesale.Valid {
		item.MinWholesalePrice = &minWholesale.Decimal
	}
	if minRetail.Valid {
		item.MinRetailPrice = &minRetail.Decimal
	}

	return item, nil
}

// isUniqueViolation reports whether err is a duplicate-key error on the
// active brand+model index
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Save inserts a new inventory item. A conflicting active brand+model
// returns a DuplicateItemError carrying the existing record.
func (r *itemRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO items (
			item_id, model, brand, imei,
			purchase_price, selling_price, quantity,
			min_wholesale_price, min_retail_price,
			supplier, purchase_date, status, color,
			image_url, image_external_id, is_archived,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	args := []interface{}{
		item.ItemID, item.Model, item.Brand, item.IMEI,
		item.PurchasePrice, item.SellingPrice, item.Quantity,
		item.MinWholesalePrice, item.MinRetailPrice,
		item.Supplier, item.PurchaseDate, item.Status, item.Color,
		item.Image.URL, item.Image.ExternalID, item.IsArchived,
		item.CreatedAt, item.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			existing, findErr := r.FindByBrandModel(ctx, item.Brand, item.Model)
			if findErr != nil {
				existing = nil
			}
			return &domain.DuplicateItemError{Existing: existing}
		}
		return fmt.Errorf("failed to save item: %w", err)
	}

	r.logger.DebugContext(ctx, "item saved",
		slog.String("item_id", item.ItemID.String()),
		slog.String("brand", string(item.Brand)),
		slog.String("model", item.Model))

	return nil
}

// Update applies a partial update and returns the updated item
func (r *itemRepository) Update(ctx context.Context, itemID uuid.UUID, update *domain.ItemUpdate) (*domain.InventoryItem, error) {
	qb := squirrel.Update("items").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"item_id": itemID}).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar)

	if update.Model != nil {
		qb = qb.Set("model", *update.Model)
	}
	if update.Brand != nil {
		qb = qb.Set("brand", *update.Brand)
	}
	if update.IMEI != nil {
		qb = qb.Set("imei", *update.IMEI)
	}
	if update.PurchasePrice != nil {
		qb = qb.Set("purchase_price", *update.PurchasePrice)
	}
	if update.SellingPrice != nil {
		qb = qb.Set("selling_price", *update.SellingPrice)
	}
	if update.Quantity != nil {
		qb = qb.Set("quantity", *update.Quantity)
		qb = qb.Set("status", domain.StatusForQuantity(*update.Quantity))
	}
	if update.ClearMinWholesale {
		qb = qb.Set("min_wholesale_price", nil)
	} else if update.MinWholesalePrice != nil {
		qb = qb.Set("min_wholesale_price", *update.MinWholesalePrice)
	}
	if update.ClearMinRetail {
		qb = qb.Set("min_retail_price", nil)
	} else if update.MinRetailPrice != nil {
		qb = qb.Set("min_retail_price", *update.MinRetailPrice)
	}
	if update.Supplier != nil {
		qb = qb.Set("supplier", *update.Supplier)
	}
	if update.PurchaseDate != nil {
		qb = qb.Set("purchase_date", *update.PurchaseDate)
	}
	if update.Color != nil {
		qb = qb.Set("color", *update.Color)
	}
	if update.Image != nil {
		qb = qb.Set("image_url", update.Image.URL)
		qb = qb.Set("image_external_id", update.Image.ExternalID)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrItemNotFound
		}
		if isUniqueViolation(err) {
			return nil, &domain.DuplicateItemError{}
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	r.logger.DebugContext(ctx, "item updated",
		slog.String("item_id", itemID.String()))

	return item, nil
}

// FindByID retrieves an item by its ID
func (r *itemRepository) FindByID(ctx context.Context, itemID uuid.UUID) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE item_id = $1`,
		strings.Join(itemColumns, ", "))

	row := r.db.QueryRow(ctx, query, itemID)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return item, nil
}

// FindByBrandModel looks up an active item by brand+model, matched
// case-insensitively
func (r *itemRepository) FindByBrandModel(ctx context.Context, brand domain.Brand, model string) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM items
		WHERE LOWER(brand) = LOWER($1) AND LOWER(model) = LOWER($2)
		  AND NOT is_archived`,
		strings.Join(itemColumns, ", "))

	row := r.db.QueryRow(ctx, query, string(brand), model)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item by brand+model: %w", err)
	}

	return item, nil
}

// FindAll retrieves items with filtering, sorting and pagination
func (r *itemRepository) FindAll(ctx context.Context, params ports.ListParams) ([]*domain.InventoryItem, int64, error) {
	params.Normalize()

	qb := squirrel.Select(itemColumns...).
		From("items").
		PlaceholderFormat(squirrel.Dollar)

	switch {
	case params.ArchivedOnly:
		qb = qb.Where(squirrel.Eq{"is_archived": true})
	case !params.IncludeArchived:
		qb = qb.Where(squirrel.Eq{"is_archived": false})
	}

	if params.Brand != "" && params.Brand != "All" {
		qb = qb.Where(squirrel.Eq{"brand": params.Brand})
	}
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
	}
	if params.Search != "" {
		// list filtering only matches the phone itself; broader fields
		// (supplier, IMEI) belong to the dedicated search endpoint
		pattern := "%" + params.Search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"model": pattern},
			squirrel.ILike{"brand": pattern},
		})
	}
	if params.MinPrice != nil {
		qb = qb.Where(squirrel.GtOrEq{"selling_price": *params.MinPrice})
	}
	if params.MaxPrice != nil {
		qb = qb.Where(squirrel.LtOrEq{"selling_price": *params.MaxPrice})
	}

	// Count matching rows before pagination
	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	countDest := make([]interface{}, len(itemColumns)+1)
	var discard interface{}
	for i := range countDest {
		countDest[i] = &discard
	}
	countDest[len(itemColumns)] = &totalCount

	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(countDest...)
	if err != nil && err != pgx.ErrNoRows {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	qb = qb.OrderBy(itemOrderBy(params.SortBy, params.SortOrder)).
		Limit(uint64(params.Limit)).
		Offset(uint64((params.Page - 1) * params.Limit))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.InventoryItem, 0, params.Limit)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, totalCount, nil
}

// itemOrderBy maps external sort keys to column expressions
func itemOrderBy(sortBy, sortOrder string) string {
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}

	column := "created_at"
	switch sortBy {
	case "model":
		column = "model"
	case "brand":
		column = "brand"
	case "quantity":
		column = "quantity"
	case "purchasePrice":
		column = "purchase_price"
	case "sellingPrice":
		column = "selling_price"
	case "purchaseDate":
		column = "purchase_date"
	case "updatedAt":
		column = "updated_at"
	}

	return fmt.Sprintf("%s %s", column, direction)
}

// Search performs a free-text lookup over active items
func (r *itemRepository) Search(ctx context.Context, query string) ([]*domain.InventoryItem, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM items
		WHERE NOT is_archived AND (
			model ILIKE $1 OR brand ILIKE $1 OR
			supplier ILIKE $1 OR imei ILIKE $1 OR color ILIKE $1
		)
		ORDER BY created_at DESC
		LIMIT 50`,
		strings.Join(itemColumns, ", "))

	rows, err := r.db.Query(ctx, sql, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Delete performs a hard delete
func (r *itemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	r.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()))

	return nil
}

// statusCaseExpr derives the status column from a quantity expression.
// References to quantity on the right-hand side of SET read the pre-update
// value, so the expression works off the delta.
func statusCaseExpr(quantityExpr string) string {
	return fmt.Sprintf(`CASE
		WHEN %[1]s <= 0 THEN '%[2]s'
		WHEN %[1]s <= 5 THEN '%[3]s'
		ELSE '%[4]s'
	END`, quantityExpr, domain.StatusOutOfStock, domain.StatusLow, domain.StatusInStock)
}

// Sell decrements quantity by one and records the sale in one transaction.
// The conditional decrement is the stock guard: concurrent sells of the
// last unit race on quantity > 0 and exactly one wins.
func (r *itemRepository) Sell(ctx context.Context, itemID uuid.UUID, sale *domain.Sale) (*domain.InventoryItem, error) {
	var updated *domain.InventoryItem

	updateQuery := fmt.Sprintf(`
		UPDATE items
		SET quantity = quantity - 1,
		    status = %s,
		    updated_at = NOW()
		WHERE item_id = $1 AND quantity > 0 AND NOT is_archived
		RETURNING %s`,
		statusCaseExpr("quantity - 1"),
		strings.Join(itemColumns, ", "))

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, updateQuery, itemID)
		item, err := scanItem(row.Scan)
		if err != nil {
			if err != pgx.ErrNoRows {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			// Decrement matched nothing: tell out-of-stock apart from missing
			var quantity int
			var archived bool
			lookupErr := tx.QueryRow(ctx,
				`SELECT quantity, is_archived FROM items WHERE item_id = $1`,
				itemID).Scan(&quantity, &archived)
			if lookupErr == pgx.ErrNoRows {
				return domain.ErrItemNotFound
			}
			if lookupErr != nil {
				return fmt.Errorf("failed to check item: %w", lookupErr)
			}
			if archived {
				return domain.NewValidationError("item is archived")
			}
			return domain.ErrOutOfStock
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO sales (
				sale_id, item_id, customer_name,
				customer_photo_url, customer_photo_external_id,
				imei, sale_price, sale_type, sale_date,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			sale.SaleID, sale.ItemID, sale.CustomerName,
			sale.CustomerPhoto.URL, sale.CustomerPhoto.ExternalID,
			sale.IMEI, sale.SalePrice, sale.SaleType, sale.SaleDate,
			sale.CreatedAt, sale.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "item sold",
		slog.String("item_id", itemID.String()),
		slog.String("sale_id", sale.SaleID.String()),
		slog.Int("remaining_quantity", updated.Quantity))

	return updated, nil
}

// Restock increments quantity and recomputes status atomically
func (r *itemRepository) Restock(ctx context.Context, itemID uuid.UUID, quantityToAdd int) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`
		UPDATE items
		SET quantity = quantity + $2,
		    status = %s,
		    updated_at = NOW()
		WHERE item_id = $1
		RETURNING %s`,
		statusCaseExpr("quantity + $2"),
		strings.Join(itemColumns, ", "))

	row := r.db.QueryRow(ctx, query, itemID, quantityToAdd)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to restock item: %w", err)
	}

	r.logger.InfoContext(ctx, "item restocked",
		slog.String("item_id", itemID.String()),
		slog.Int("added", quantityToAdd),
		slog.Int("quantity", item.Quantity))

	return item, nil
}

// SetArchived flips the archived flag. Unarchiving can collide with an
// active item of the same brand+model on the partial unique index.
func (r *itemRepository) SetArchived(ctx context.Context, itemID uuid.UUID, archived bool) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`
		UPDATE items
		SET is_archived = $2, updated_at = NOW()
		WHERE item_id = $1
		RETURNING %s`,
		strings.Join(itemColumns, ", "))

	row := r.db.QueryRow(ctx, query, itemID, archived)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrItemNotFound
		}
		if isUniqueViolation(err) {
			return nil, &domain.DuplicateItemError{}
		}
		return nil, fmt.Errorf("failed to set archived flag: %w", err)
	}

	return item, nil
}

// Stats computes the dashboard aggregates over active inventory
func (r *itemRepository) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	stats := &domain.InventoryStats{
		TotalPurchaseValue: decimal.Zero,
		TotalSellingValue:  decimal.Zero,
		PotentialProfit:    decimal.Zero,
		BrandDistribution:  []domain.BrandStats{},
		StatusDistribution: []domain.StatusStats{},
		MonthlyTrends:      []domain.MonthlyTrend{},
	}

	totalsQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(purchase_price * quantity), 0),
			COALESCE(SUM(selling_price * quantity), 0),
			COALESCE(ROUND(AVG(purchase_price)), 0),
			COALESCE(ROUND(AVG(selling_price)), 0)
		FROM items
		WHERE NOT is_archived`

	err := r.db.QueryRow(ctx, totalsQuery).Scan(
		&stats.TotalItems,
		&stats.TotalQuantity,
		&stats.TotalPurchaseValue,
		&stats.TotalSellingValue,
		&stats.AvgPurchasePrice,
		&stats.AvgSellingPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	stats.PotentialProfit = stats.TotalSellingValue.Sub(stats.TotalPurchaseValue)

	brandQuery := `
		SELECT brand, COUNT(*), COALESCE(SUM(quantity), 0),
		       COALESCE(ROUND(AVG(selling_price), 2), 0)
		FROM items
		WHERE NOT is_archived
		GROUP BY brand
		ORDER BY COALESCE(SUM(quantity), 0) DESC`

	rows, err := r.db.Query(ctx, brandQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to compute brand distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bs domain.BrandStats
		if err := rows.Scan(&bs.Brand, &bs.Count, &bs.TotalQuantity, &bs.AvgSellingPrice); err != nil {
			return nil, fmt.Errorf("failed to scan brand stats: %w", err)
		}
		stats.BrandDistribution = append(stats.BrandDistribution, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brand stats: %w", err)
	}

	statusQuery := `
		SELECT status, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM items
		WHERE NOT is_archived
		GROUP BY status`

	rows, err = r.db.Query(ctx, statusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ss domain.StatusStats
		if err := rows.Scan(&ss.Status, &ss.Count, &ss.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan status stats: %w", err)
		}
		stats.StatusDistribution = append(stats.StatusDistribution, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status stats: %w", err)
	}

	trendQuery := `
		SELECT EXTRACT(MONTH FROM purchase_date)::int AS month,
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(purchase_price * quantity), 0)
		FROM items
		WHERE NOT is_archived
		GROUP BY month
		ORDER BY month ASC`

	rows, err = r.db.Query(ctx, trendQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly trends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mt domain.MonthlyTrend
		if err := rows.Scan(&mt.Month, &mt.Count, &mt.Value); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend: %w", err)
		}
		stats.MonthlyTrends = append(stats.MonthlyTrends, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly trends: %w", err)
	}

	bestQuery := `
		SELECT model, brand, quantity
		FROM items
		WHERE NOT is_archived
		ORDER BY quantity DESC, created_at ASC
		LIMIT 1`

	var best domain.BestSeller
	err = r.db.QueryRow(ctx, bestQuery).Scan(&best.Model, &best.Brand, &best.Quantity)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to find best seller: %w", err)
	}
	if err == nil {
		stats.BestSelling = &best
	}

	return stats, nil
}
