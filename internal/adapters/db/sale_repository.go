// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sales")),
	}
}

// FindAll lists sale history joined with the referenced item. The join is a
// LEFT JOIN so sales survive item deletion; those rows carry a nil item.
func (r *saleRepository) FindAll(ctx context.Context, params ports.SaleListParams) ([]*domain.SaleWithItem, error) {
	qb := squirrel.Select(
		"s.sale_id", "s.item_id", "s.customer_name",
		"s.customer_photo_url", "s.customer_photo_external_id",
		"s.imei", "s.sale_price", "s.sale_type", "s.sale_date",
		"s.created_at", "s.updated_at",
		"i.item_id", "i.model", "i.brand",
	).From("sales s").
		LeftJoin("items i ON i.item_id = s.item_id").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"i.brand": pattern},
			squirrel.ILike{"i.model": pattern},
			squirrel.ILike{"s.customer_name": pattern},
			squirrel.ILike{"s.imei": pattern},
		})
	}

	qb = qb.OrderBy(saleOrderBy(params.SortBy, params.SortOrder))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sales query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.SaleWithItem
	for rows.Next() {
		sw := &domain.SaleWithItem{}
		var itemID *uuid.UUID
		var model, brand *string

		err := rows.Scan(
			&sw.SaleID, &sw.ItemID, &sw.CustomerName,
			&sw.CustomerPhoto.URL, &sw.CustomerPhoto.ExternalID,
			&sw.IMEI, &sw.SalePrice, &sw.SaleType, &sw.SaleDate,
			&sw.CreatedAt, &sw.UpdatedAt,
			&itemID, &model, &brand,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		if itemID != nil {
			sw.Item = &domain.SaleItemRef{
				ItemID: *itemID,
				Model:  *model,
				Brand:  domain.Brand(*brand),
			}
		}

		sales = append(sales, sw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// saleOrderBy maps external sort keys to column expressions
func saleOrderBy(sortBy, sortOrder string) string {
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}

	column := "s.sale_date"
	switch sortBy {
	case "price":
		column = "s.sale_price"
	case "customer":
		column = "s.customer_name"
	case "brand":
		column = "i.brand"
	}

	return fmt.Sprintf("%s %s", column, direction)
}

// Count returns the total number of recorded sales
func (r *saleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}

	return count, nil
}
