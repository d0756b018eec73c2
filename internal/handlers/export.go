// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// exportPageSize is the page size used to walk the full inventory
const exportPageSize = 500

// ExportHandler produces spreadsheet exports of the inventory
type ExportHandler struct {
	service ports.InventoryService
	logger  *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ports.InventoryService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeArchived := r.URL.Query().Get("archived") == "all"

	items, err := h.collectItems(r, includeArchived)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect items for export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(items)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("total_rows", len(items)),
		slog.String("filename", filename))
}

// collectItems pages through the full inventory
func (h *ExportHandler) collectItems(r *http.Request, includeArchived bool) ([]*domain.InventoryItem, error) {
	var items []*domain.InventoryItem

	for page := 1; ; page++ {
		result, err := h.service.GetAllItems(r.Context(), ports.ListParams{
			Page:            page,
			Limit:           exportPageSize,
			IncludeArchived: includeArchived,
		})
		if err != nil {
			return nil, err
		}

		items = append(items, result.Items...)
		if page >= result.TotalPages {
			break
		}
	}

	return items, nil
}

var excelHeaders = []string{
	"Item ID", "Model", "Brand", "IMEI",
	"Purchase Price", "Selling Price", "Quantity", "Status",
	"Min Wholesale Price", "Min Retail Price",
	"Supplier", "Purchase Date", "Color", "Archived",
	"Created At", "Updated At",
}

// generateExcelFile creates the workbook in memory
func (h *ExportHandler) generateExcelFile(items []*domain.InventoryItem) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range excelHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, item := range items {
		row := sheet.AddRow()
		for _, value := range itemToExcelRow(item) {
			row.AddCell().Value = value
		}
	}

	// SetColWidth is 1-based
	for i := range excelHeaders {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func itemToExcelRow(item *domain.InventoryItem) []string {
	minWholesale := ""
	if item.MinWholesalePrice != nil {
		minWholesale = item.MinWholesalePrice.StringFixed(2)
	}
	minRetail := ""
	if item.MinRetailPrice != nil {
		minRetail = item.MinRetailPrice.StringFixed(2)
	}
	archived := "No"
	if item.IsArchived {
		archived = "Yes"
	}

	return []string{
		item.ItemID.String(),
		item.Model,
		string(item.Brand),
		item.IMEI,
		item.PurchasePrice.StringFixed(2),
		item.SellingPrice.StringFixed(2),
		strconv.Itoa(item.Quantity),
		string(item.Status),
		minWholesale,
		minRetail,
		item.Supplier,
		item.PurchaseDate.Format("2006-01-02"),
		item.Color,
		archived,
		item.CreatedAt.Format("2006-01-02 15:04:05"),
		item.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
