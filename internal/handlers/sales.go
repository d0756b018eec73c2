// internal/handlers/sales.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

const salesCacheTTL = time.Minute

// SalesHandler serves the sale history endpoints
type SalesHandler struct {
	sales  ports.SaleRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(sales ports.SaleRepository, cache ports.CacheRepository, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		sales:  sales,
		cache:  cache,
		logger: logger.With(slog.String("handler", "sales")),
	}
}

// saleRecord is the wire shape of one history entry. Sales whose item was
// deleted keep their row and show a placeholder item.
type saleRecord struct {
	*domain.SaleWithItem
	Item saleItemView `json:"item"`
}

type saleItemView struct {
	ItemID string `json:"item_id,omitempty"`
	Model  string `json:"model"`
	Brand  string `json:"brand,omitempty"`
}

// List handles GET /api/v1/sales
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := ports.SaleListParams{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var sales []*domain.SaleWithItem
	var err error

	// Only the unfiltered default view is worth caching
	if params.Search == "" && params.SortBy == "" && params.SortOrder == "" {
		err = h.cache.GetOrSet(ctx, "sales:all", &sales, func() (interface{}, error) {
			return h.sales.FindAll(ctx, params)
		}, salesCacheTTL)
	} else {
		sales, err = h.sales.FindAll(ctx, params)
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	records := make([]saleRecord, 0, len(sales))
	for _, s := range sales {
		rec := saleRecord{SaleWithItem: s}
		if s.Item != nil {
			rec.Item = saleItemView{
				ItemID: s.Item.ItemID.String(),
				Model:  s.Item.Model,
				Brand:  string(s.Item.Brand),
			}
		} else {
			rec.Item = saleItemView{Model: domain.DeletedItemLabel}
		}
		records = append(records, rec)
	}

	respondSuccess(w, h.logger, http.StatusOK, "", map[string]interface{}{
		"sales": records,
		"count": len(records),
	})
}
