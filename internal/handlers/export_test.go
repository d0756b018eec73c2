// internal/handlers/export_test.go
package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
	"github.com/takeoneapp/takeone-be/internal/handlers"
	"github.com/takeoneapp/takeone-be/test/helpers"
	"github.com/takeoneapp/takeone-be/test/mocks"
)

func TestExportHandler_ExportExcel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewExportHandler(mockService, helpers.TestLogger())

	items := []*domain.InventoryItem{
		helpers.CreateTestInventoryItem(),
		helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.Model = "Pixel 8a"
			i.Brand = domain.BrandGoogle
			i.Quantity = 0
			i.Status = domain.StatusOutOfStock
		}),
	}

	mockService.EXPECT().
		GetAllItems(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 500, params.Limit)
			assert.False(t, params.IncludeArchived)
			return &ports.ListResult{
				Items:      items,
				Page:       1,
				Limit:      500,
				Total:      int64(len(items)),
				TotalPages: 1,
			}, nil
		})

	req := httptest.NewRequest("GET", "/api/v1/export/excel", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_export_")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	// Parse the workbook back to verify its rows
	file, err := xlsx.OpenReaderAt(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Inventory", sheet.Name)

	// Header row plus one row per item
	assert.Equal(t, 1+len(items), sheet.MaxRow)

	headerCell, err := sheet.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Item ID", headerCell.Value)

	modelCell, err := sheet.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S24", modelCell.Value)

	statusCell, err := sheet.Cell(2, 7)
	require.NoError(t, err)
	assert.Equal(t, "out_of_stock", statusCell.Value)
}

func TestExportHandler_ExportExcel_PagesThroughInventory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewExportHandler(mockService, helpers.TestLogger())

	page1 := []*domain.InventoryItem{helpers.CreateTestInventoryItem()}
	page2 := []*domain.InventoryItem{helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Model = "OnePlus 12R"
		i.Brand = domain.BrandOnePlus
	})}

	gomock.InOrder(
		mockService.EXPECT().
			GetAllItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
				assert.Equal(t, 1, params.Page)
				return &ports.ListResult{Items: page1, Page: 1, Limit: 500, Total: 2, TotalPages: 2}, nil
			}),
		mockService.EXPECT().
			GetAllItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
				assert.Equal(t, 2, params.Page)
				return &ports.ListResult{Items: page2, Page: 2, Limit: 500, Total: 2, TotalPages: 2}, nil
			}),
	)

	req := httptest.NewRequest("GET", "/api/v1/export/excel", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	file, err := xlsx.OpenReaderAt(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	assert.Equal(t, 3, file.Sheets[0].MaxRow)
}

func TestExportHandler_ExportExcel_IncludesArchived(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewExportHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetAllItems(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
			assert.True(t, params.IncludeArchived)
			return &ports.ListResult{Items: []*domain.InventoryItem{}, TotalPages: 1}, nil
		})

	req := httptest.NewRequest("GET", "/api/v1/export/excel?archived=all", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestExportHandler_ExportExcel_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockInventoryService(ctrl)
	handler := handlers.NewExportHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetAllItems(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database down"))

	req := httptest.NewRequest("GET", "/api/v1/export/excel", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeResponse(t, w.Body.Bytes())
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to retrieve data", body.Message)
}
