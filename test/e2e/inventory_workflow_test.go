//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	redis_a "github.com/takeoneapp/takeone-be/internal/adapters/redis_adapter"
	"github.com/takeoneapp/takeone-be/internal/core/domain"
	"github.com/takeoneapp/takeone-be/internal/core/services"
	"github.com/takeoneapp/takeone-be/internal/handlers"
	"github.com/takeoneapp/takeone-be/test/helpers"
)

// memImageStore keeps uploads in memory so the suite never needs object
// storage
type memImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	counter int
}

func newMemImageStore() *memImageStore {
	return &memImageStore{objects: make(map[string][]byte)}
}

func (s *memImageStore) Upload(ctx context.Context, data []byte, folder string) (domain.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	key := fmt.Sprintf("%s/e2e-%d", folder, s.counter)
	s.objects[key] = data

	return domain.ImageRef{
		URL:        "https://e2e.local/" + key,
		ExternalID: key,
	}, nil
}

func (s *memImageStore) Delete(ctx context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, externalID)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type InventoryE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *InventoryE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *InventoryE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *InventoryE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

func (s *InventoryE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()

	itemRepo := db.NewItemRepository(s.testDB.Database, logger)
	saleRepo := db.NewSaleRepository(s.testDB.Database, logger)
	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)
	service := services.NewInventoryService(
		itemRepo, saleRepo, newMemImageStore(), cache, nil, logger)

	inventoryHandler := handlers.NewInventoryHandler(service, logger)
	salesHandler := handlers.NewSalesHandler(saleRepo, cache, logger)
	uploadHandler := handlers.NewUploadHandler(service, logger)
	exportHandler := handlers.NewExportHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/inventory", inventoryHandler.List)
	mux.HandleFunc("POST /api/v1/inventory", inventoryHandler.Create)
	mux.HandleFunc("GET /api/v1/inventory/stats", inventoryHandler.Stats)
	mux.HandleFunc("GET /api/v1/inventory/search", inventoryHandler.Search)
	mux.HandleFunc("GET /api/v1/inventory/{id}", inventoryHandler.Get)
	mux.HandleFunc("PUT /api/v1/inventory/{id}", inventoryHandler.Update)
	mux.HandleFunc("DELETE /api/v1/inventory/{id}", inventoryHandler.Delete)
	mux.HandleFunc("POST /api/v1/inventory/{id}/sell", inventoryHandler.Sell)
	mux.HandleFunc("POST /api/v1/inventory/{id}/restock", inventoryHandler.Restock)
	mux.HandleFunc("PATCH /api/v1/inventory/{id}/archive", inventoryHandler.Archive)
	mux.HandleFunc("PATCH /api/v1/inventory/{id}/unarchive", inventoryHandler.Unarchive)
	mux.HandleFunc("GET /api/v1/sales", salesHandler.List)
	mux.HandleFunc("POST /api/v1/upload/image", uploadHandler.UploadImage)
	mux.HandleFunc("DELETE /api/v1/upload/image/{id...}", uploadHandler.DeleteImage)
	mux.HandleFunc("GET /api/v1/export/excel", exportHandler.ExportExcel)

	return httptest.NewServer(mux)
}

func (s *InventoryE2ESuite) TestCompleteInventoryWorkflow() {
	// 1. Create an inventory item
	createReq := map[string]interface{}{
		"model":          "Galaxy S24",
		"brand":          "Samsung",
		"imei":           "356789104563218",
		"purchase_price": "45000",
		"selling_price":  "52000",
		"quantity":       2,
		"supplier":       "Mahavir Distributors",
		"color":          "Onyx Black",
	}

	resp := s.makeRequest("POST", "/inventory", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created domain.InventoryItem
	s.decodeData(resp, &created)
	s.NotEmpty(created.ItemID)
	s.Equal(domain.StatusLow, created.Status)

	itemID := created.ItemID.String()

	// 2. Retrieve the created item
	resp = s.makeRequest("GET", "/inventory/"+itemID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var retrieved domain.InventoryItem
	s.decodeData(resp, &retrieved)
	s.Equal("Galaxy S24", retrieved.Model)

	// 3. Duplicate brand+model is rejected while the item is active
	resp = s.makeRequest("POST", "/inventory", createReq)
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 4. Restock pushes the item above the low-stock threshold
	resp = s.makeRequest("POST", "/inventory/"+itemID+"/restock",
		map[string]interface{}{"quantityToAdd": 6})
	s.Equal(http.StatusOK, resp.StatusCode)

	var restocked domain.InventoryItem
	s.decodeData(resp, &restocked)
	s.Equal(8, restocked.Quantity)
	s.Equal(domain.StatusInStock, restocked.Status)

	// 5. Sell one unit with the mandatory customer photo
	resp = s.sellRequest(itemID, "51000", "retail")
	s.Equal(http.StatusOK, resp.StatusCode)

	var afterSale domain.InventoryItem
	s.decodeData(resp, &afterSale)
	s.Equal(7, afterSale.Quantity)

	// 6. A price below the floor is rejected with the floor amount
	resp = s.sellRequest(itemID, "45100", "retail")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var failure envelope
	s.decodeEnvelope(resp, &failure)
	s.Contains(failure.Message, "₹46000")

	// 7. The sale shows up in history
	resp = s.makeRequest("GET", "/sales", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history struct {
		Sales []json.RawMessage `json:"sales"`
		Count int               `json:"count"`
	}
	s.decodeData(resp, &history)
	s.Equal(1, history.Count)

	// 8. Stats reflect the live inventory
	resp = s.makeRequest("GET", "/inventory/stats", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats domain.InventoryStats
	s.decodeData(resp, &stats)
	s.Equal(int64(1), stats.TotalItems)
	s.Equal(int64(7), stats.TotalQuantity)
	s.Equal(int64(1), stats.TotalSales)

	// 9. Export to Excel
	resp = s.makeRequest("GET", "/export/excel", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	resp.Body.Close()

	// 10. Archive frees the brand+model slot for a fresh listing
	resp = s.makeRequest("PATCH", "/inventory/"+itemID+"/archive", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("POST", "/inventory", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var relisted domain.InventoryItem
	s.decodeData(resp, &relisted)
	s.NotEqual(created.ItemID, relisted.ItemID)

	// 11. Unarchiving the original now conflicts with the new listing
	resp = s.makeRequest("PATCH", "/inventory/"+itemID+"/unarchive", nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 12. Delete the relisted item; its sale-free history vanishes silently
	resp = s.makeRequest("DELETE", "/inventory/"+relisted.ItemID.String(), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/inventory/"+relisted.ItemID.String(), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *InventoryE2ESuite) TestSaleHistorySurvivesItemDeletion() {
	resp := s.makeRequest("POST", "/inventory", map[string]interface{}{
		"model":          "Pixel 8a",
		"brand":          "Google",
		"purchase_price": "34000",
		"selling_price":  "39999",
		"quantity":       3,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item domain.InventoryItem
	s.decodeData(resp, &item)
	itemID := item.ItemID.String()

	resp = s.sellRequest(itemID, "39999", "retail")
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("DELETE", "/inventory/"+itemID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/sales", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history struct {
		Sales []struct {
			Item struct {
				Model string `json:"model"`
			} `json:"item"`
		} `json:"sales"`
		Count int `json:"count"`
	}
	s.decodeData(resp, &history)
	s.Equal(1, history.Count)
	s.Equal(domain.DeletedItemLabel, history.Sales[0].Item.Model)
}

func (s *InventoryE2ESuite) TestSellUntilOutOfStock() {
	resp := s.makeRequest("POST", "/inventory", map[string]interface{}{
		"model":          "iQOO Neo 9 Pro",
		"brand":          "iQOO",
		"purchase_price": "30000",
		"selling_price":  "35500",
		"quantity":       1,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item domain.InventoryItem
	s.decodeData(resp, &item)
	itemID := item.ItemID.String()

	resp = s.sellRequest(itemID, "35500", "retail")
	s.Equal(http.StatusOK, resp.StatusCode)

	var sold domain.InventoryItem
	s.decodeData(resp, &sold)
	s.Equal(0, sold.Quantity)
	s.Equal(domain.StatusOutOfStock, sold.Status)

	resp = s.sellRequest(itemID, "35500", "retail")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var failure envelope
	s.decodeEnvelope(resp, &failure)
	s.Contains(failure.Message, "out of stock")
}

func (s *InventoryE2ESuite) TestSearchFunctionality() {
	items := []map[string]interface{}{
		{
			"model":          "Galaxy S24 Ultra",
			"brand":          "Samsung",
			"purchase_price": "95000",
			"selling_price":  "110000",
			"quantity":       4,
		},
		{
			"model":          "Galaxy A55",
			"brand":          "Samsung",
			"purchase_price": "24000",
			"selling_price":  "28500",
			"quantity":       10,
		},
		{
			"model":          "Redmi Note 13 Pro",
			"brand":          "Xiaomi",
			"purchase_price": "16500",
			"selling_price":  "19999",
			"quantity":       15,
		},
	}

	for _, item := range items {
		resp := s.makeRequest("POST", "/inventory", item)
		s.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.makeRequest("GET", "/inventory/search?q=galaxy", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var results []domain.InventoryItem
	s.decodeData(resp, &results)
	s.Len(results, 2)

	resp = s.makeRequest("GET", "/inventory?brand=Xiaomi", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var list struct {
		Items []domain.InventoryItem `json:"items"`
		Total int64                  `json:"total"`
	}
	s.decodeData(resp, &list)
	s.Equal(int64(1), list.Total)
}

func (s *InventoryE2ESuite) TestConcurrentSellsNeverOversell() {
	resp := s.makeRequest("POST", "/inventory", map[string]interface{}{
		"model":          "OnePlus 12R",
		"brand":          "OnePlus",
		"purchase_price": "33000",
		"selling_price":  "38500",
		"quantity":       5,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item domain.InventoryItem
	s.decodeData(resp, &item)
	itemID := item.ItemID.String()

	// Fire more sells than there is stock
	const attempts = 10
	results := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.sellRequest(itemID, "38500", "retail")
			resp.Body.Close()
			results <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for code := range results {
		if code == http.StatusOK {
			succeeded++
		}
	}
	s.Equal(5, succeeded)

	resp = s.makeRequest("GET", "/inventory/"+itemID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var final domain.InventoryItem
	s.decodeData(resp, &final)
	s.Equal(0, final.Quantity)
	s.Equal(domain.StatusOutOfStock, final.Status)
}

// Helper methods

func (s *InventoryE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

// sellRequest posts the multipart sale form with a customer photo attached
func (s *InventoryE2ESuite) sellRequest(itemID, price, saleType string) *http.Response {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	s.NoError(writer.WriteField("customerName", "Ravi Kumar"))
	s.NoError(writer.WriteField("imei", "356789104563218"))
	s.NoError(writer.WriteField("salePrice", price))
	s.NoError(writer.WriteField("saleType", saleType))

	part, err := writer.CreateFormFile("customerPhoto", "customer.png")
	s.NoError(err)
	_, err = part.Write(helpers.PNGImageBytes())
	s.NoError(err)
	s.NoError(writer.Close())

	req, err := http.NewRequest("POST", s.baseURL+"/inventory/"+itemID+"/sell", body)
	s.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	s.NoError(err)
	return resp
}

func (s *InventoryE2ESuite) decodeEnvelope(resp *http.Response, env *envelope) {
	defer resp.Body.Close()
	s.NoError(json.NewDecoder(resp.Body).Decode(env))
}

func (s *InventoryE2ESuite) decodeData(resp *http.Response, v interface{}) {
	var env envelope
	s.decodeEnvelope(resp, &env)
	s.NoError(json.Unmarshal(env.Data, v))
}

func TestInventoryE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(InventoryE2ESuite))
}
