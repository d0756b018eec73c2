// internal/core/domain/stats.go
package domain

import "github.com/shopspring/decimal"

// InventoryStats aggregates the dashboard view of the live (non-archived)
// inventory. Numeric sums over an empty inventory are zero, never null;
// BestSelling alone is nil when no items exist.
type InventoryStats struct {
	TotalItems         int64           `json:"total_items"`
	TotalQuantity      int64           `json:"total_quantity"`
	TotalSales         int64           `json:"total_sales"`
	TotalPurchaseValue decimal.Decimal `json:"total_purchase_value"`
	TotalSellingValue  decimal.Decimal `json:"total_selling_value"`
	PotentialProfit    decimal.Decimal `json:"potential_profit"`
	AvgPurchasePrice   int64           `json:"avg_purchase_price"`
	AvgSellingPrice    int64           `json:"avg_selling_price"`
	BrandDistribution  []BrandStats    `json:"brand_distribution"`
	StatusDistribution []StatusStats   `json:"status_distribution"`
	MonthlyTrends      []MonthlyTrend  `json:"monthly_trends"`
	BestSelling        *BestSeller     `json:"best_selling"`
}

// BrandStats is the per-brand aggregate, sorted descending by quantity
type BrandStats struct {
	Brand           Brand           `json:"brand"`
	Count           int64           `json:"count"`
	TotalQuantity   int64           `json:"total_quantity"`
	AvgSellingPrice decimal.Decimal `json:"avg_selling_price"`
}

// StatusStats is the per-status aggregate
type StatusStats struct {
	Status        StockStatus `json:"status"`
	Count         int64       `json:"count"`
	TotalQuantity int64       `json:"total_quantity"`
}

// MonthlyTrend buckets stock intake by calendar month of purchase date.
// Count sums quantities; Value sums purchasePrice*quantity.
type MonthlyTrend struct {
	Month int             `json:"month"`
	Count int64           `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// BestSeller projects the single item holding the most stock
type BestSeller struct {
	Model    string `json:"model"`
	Brand    Brand  `json:"brand"`
	Quantity int    `json:"quantity"`
}
