// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// maxMultipartMemory bounds in-memory parsing of multipart bodies
const maxMultipartMemory = 12 << 20

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := parseListParams(r)

	result, err := h.service.GetAllItems(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to list inventory items")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "", result)
}

// Get handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.service.GetItemByID(ctx, itemID)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to retrieve item")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "", item)
}

// Create handles POST /api/v1/inventory. Accepts JSON or multipart form
// data; the optional item photo travels as the multipart "image" part.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, image, err := parseItemRequest(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.CreateItem(ctx, req.ToDomain(), image)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to create inventory item")
		return
	}

	respondSuccess(w, h.logger, http.StatusCreated, "Item added to inventory", item)
}

// Update handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	update, image, err := parseItemUpdate(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.UpdateItem(ctx, itemID, update, image)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update item",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to update inventory item")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "Item updated", item)
}

// Delete handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.service.DeleteItem(ctx, itemID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete item",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to delete inventory item")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "Item deleted", nil)
}

// Sell handles POST /api/v1/inventory/{id}/sell. The customer photo is a
// required multipart part.
func (h *InventoryHandler) Sell(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	salePrice, err := parseDecimalField(r.FormValue("salePrice"), "salePrice")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	req := ports.SellRequest{
		CustomerName: r.FormValue("customerName"),
		IMEI:         r.FormValue("imei"),
		SalePrice:    salePrice,
		SaleType:     domain.SaleType(strings.ToLower(r.FormValue("saleType"))),
	}

	photo, err := readFormFile(r, "customerPhoto")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.SellItem(ctx, itemID, req, photo)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sell item",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to record sale")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "Sale recorded", item)
}

// Restock handles POST /api/v1/inventory/{id}/restock
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var body struct {
		QuantityToAdd int `json:"quantityToAdd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.RestockItem(ctx, itemID, body.QuantityToAdd)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to restock item")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "Item restocked", item)
}

// Archive handles PATCH /api/v1/inventory/{id}/archive
func (h *InventoryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// Unarchive handles PATCH /api/v1/inventory/{id}/unarchive
func (h *InventoryHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *InventoryHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	ctx := r.Context()

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var item *domain.InventoryItem
	var message string
	if archived {
		item, err = h.service.ArchiveItem(ctx, itemID)
		message = "Item archived"
	} else {
		item, err = h.service.UnarchiveItem(ctx, itemID)
		message = "Item restored to inventory"
	}

	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to change archive state")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, message, item)
}

// Search handles GET /api/v1/inventory/search?q=
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	items, err := h.service.SearchItems(ctx, query)
	if err != nil {
		respondDomainError(w, h.logger, err, "Search failed")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "", items)
}

// Stats handles GET /api/v1/inventory/stats
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute stats",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to compute statistics")
		return
	}

	respondSuccess(w, h.logger, http.StatusOK, "", stats)
}

// parseListParams parses query parameters for listing inventory
func parseListParams(r *http.Request) ports.ListParams {
	q := r.URL.Query()

	params := ports.ListParams{
		Brand:     q.Get("brand"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		if limit > 100 {
			limit = 100
		}
		params.Limit = limit
	}
	if min, err := decimal.NewFromString(q.Get("minPrice")); err == nil {
		params.MinPrice = &min
	}
	if max, err := decimal.NewFromString(q.Get("maxPrice")); err == nil {
		params.MaxPrice = &max
	}

	switch q.Get("archived") {
	case "true":
		params.ArchivedOnly = true
	case "all":
		params.IncludeArchived = true
	}

	params.Normalize()
	return params
}

// ItemRequest is the request body for creating an inventory item
type ItemRequest struct {
	Model             string           `json:"model"`
	Brand             string           `json:"brand"`
	IMEI              string           `json:"imei,omitempty"`
	PurchasePrice     decimal.Decimal  `json:"purchase_price"`
	SellingPrice      decimal.Decimal  `json:"selling_price"`
	Quantity          int              `json:"quantity"`
	MinWholesalePrice *decimal.Decimal `json:"min_wholesale_price,omitempty"`
	MinRetailPrice    *decimal.Decimal `json:"min_retail_price,omitempty"`
	Supplier          string           `json:"supplier,omitempty"`
	PurchaseDate      *time.Time       `json:"purchase_date,omitempty"`
	Color             string           `json:"color,omitempty"`
}

// Validate validates the create item request
func (r *ItemRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(r.Brand) == "" {
		return fmt.Errorf("brand is required")
	}
	if r.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase_price cannot be negative")
	}
	if r.SellingPrice.IsNegative() {
		return fmt.Errorf("selling_price cannot be negative")
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *ItemRequest) ToDomain() *domain.InventoryItem {
	item := &domain.InventoryItem{
		Model:             strings.TrimSpace(r.Model),
		Brand:             domain.Brand(strings.TrimSpace(r.Brand)),
		IMEI:              strings.TrimSpace(r.IMEI),
		PurchasePrice:     r.PurchasePrice,
		SellingPrice:      r.SellingPrice,
		Quantity:          r.Quantity,
		MinWholesalePrice: r.MinWholesalePrice,
		MinRetailPrice:    r.MinRetailPrice,
		Supplier:          strings.TrimSpace(r.Supplier),
		Color:             strings.TrimSpace(r.Color),
	}

	if r.PurchaseDate != nil {
		item.PurchaseDate = *r.PurchaseDate
	}

	return item
}

// parseItemRequest decodes a create request from JSON or multipart form.
// The returned bytes are the optional "image" part, nil when absent.
func parseItemRequest(r *http.Request) (*ItemRequest, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, nil, fmt.Errorf("invalid multipart form")
		}

		req := &ItemRequest{
			Model:    r.FormValue("model"),
			Brand:    r.FormValue("brand"),
			IMEI:     r.FormValue("imei"),
			Supplier: r.FormValue("supplier"),
			Color:    r.FormValue("color"),
		}

		var err error
		if req.PurchasePrice, err = parseDecimalField(r.FormValue("purchasePrice"), "purchasePrice"); err != nil {
			return nil, nil, err
		}
		if req.SellingPrice, err = parseDecimalField(r.FormValue("sellingPrice"), "sellingPrice"); err != nil {
			return nil, nil, err
		}
		if v := r.FormValue("quantity"); v != "" {
			if req.Quantity, err = strconv.Atoi(v); err != nil {
				return nil, nil, fmt.Errorf("quantity must be an integer")
			}
		}
		if v := r.FormValue("minWholesalePrice"); v != "" {
			d, err := parseDecimalField(v, "minWholesalePrice")
			if err != nil {
				return nil, nil, err
			}
			req.MinWholesalePrice = &d
		}
		if v := r.FormValue("minRetailPrice"); v != "" {
			d, err := parseDecimalField(v, "minRetailPrice")
			if err != nil {
				return nil, nil, err
			}
			req.MinRetailPrice = &d
		}
		if v := r.FormValue("purchaseDate"); v != "" {
			ts, err := parseDateField(v)
			if err != nil {
				return nil, nil, err
			}
			req.PurchaseDate = &ts
		}

		image, err := readFormFile(r, "image")
		if err != nil {
			return nil, nil, err
		}

		return req, image, nil
	}

	req := &ItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, nil, fmt.Errorf("invalid request body")
	}
	return req, nil, nil
}

// parseItemUpdate decodes a partial update from JSON or multipart form.
// Only fields present in the payload make it into the update.
func parseItemUpdate(r *http.Request) (*domain.ItemUpdate, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, nil, fmt.Errorf("invalid multipart form")
		}

		update := &domain.ItemUpdate{}
		form := r.MultipartForm.Value

		if v, ok := formField(form, "model"); ok {
			update.Model = &v
		}
		if v, ok := formField(form, "brand"); ok {
			b := domain.Brand(strings.TrimSpace(v))
			update.Brand = &b
		}
		if v, ok := formField(form, "imei"); ok {
			update.IMEI = &v
		}
		if v, ok := formField(form, "supplier"); ok {
			update.Supplier = &v
		}
		if v, ok := formField(form, "color"); ok {
			update.Color = &v
		}
		if v, ok := formField(form, "purchasePrice"); ok {
			d, err := parseDecimalField(v, "purchasePrice")
			if err != nil {
				return nil, nil, err
			}
			update.PurchasePrice = &d
		}
		if v, ok := formField(form, "sellingPrice"); ok {
			d, err := parseDecimalField(v, "sellingPrice")
			if err != nil {
				return nil, nil, err
			}
			update.SellingPrice = &d
		}
		if v, ok := formField(form, "quantity"); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, nil, fmt.Errorf("quantity must be an integer")
			}
			update.Quantity = &n
		}
		if v, ok := formField(form, "minWholesalePrice"); ok {
			if v == "" {
				update.ClearMinWholesale = true
			} else {
				d, err := parseDecimalField(v, "minWholesalePrice")
				if err != nil {
					return nil, nil, err
				}
				update.MinWholesalePrice = &d
			}
		}
		if v, ok := formField(form, "minRetailPrice"); ok {
			if v == "" {
				update.ClearMinRetail = true
			} else {
				d, err := parseDecimalField(v, "minRetailPrice")
				if err != nil {
					return nil, nil, err
				}
				update.MinRetailPrice = &d
			}
		}
		if v, ok := formField(form, "purchaseDate"); ok {
			ts, err := parseDateField(v)
			if err != nil {
				return nil, nil, err
			}
			update.PurchaseDate = &ts
		}

		image, err := readFormFile(r, "image")
		if err != nil {
			return nil, nil, err
		}

		return update, image, nil
	}

	var body struct {
		Model             *string          `json:"model"`
		Brand             *string          `json:"brand"`
		IMEI              *string          `json:"imei"`
		PurchasePrice     *decimal.Decimal `json:"purchase_price"`
		SellingPrice      *decimal.Decimal `json:"selling_price"`
		Quantity          *int             `json:"quantity"`
		MinWholesalePrice *decimal.Decimal `json:"min_wholesale_price"`
		MinRetailPrice    *decimal.Decimal `json:"min_retail_price"`
		Supplier          *string          `json:"supplier"`
		PurchaseDate      *time.Time       `json:"purchase_date"`
		Color             *string          `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("invalid request body")
	}

	update := &domain.ItemUpdate{
		Model:             body.Model,
		IMEI:              body.IMEI,
		PurchasePrice:     body.PurchasePrice,
		SellingPrice:      body.SellingPrice,
		Quantity:          body.Quantity,
		MinWholesalePrice: body.MinWholesalePrice,
		MinRetailPrice:    body.MinRetailPrice,
		Supplier:          body.Supplier,
		PurchaseDate:      body.PurchaseDate,
		Color:             body.Color,
	}
	if body.Brand != nil {
		b := domain.Brand(strings.TrimSpace(*body.Brand))
		update.Brand = &b
	}

	return update, nil, nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "multipart/form-data"
}

func formField(form map[string][]string, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parseDecimalField(value, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	return d, nil
}

func parseDateField(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format")
}

// readFormFile reads one uploaded file part, returning nil when the part
// is absent
func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxMultipartMemory))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s upload", field)
	}

	return data, nil
}
