// Package integration provides integration testing for the storefront backend API.
// This file contains tests for the product API endpoints against a real database.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// TestServer wraps the test database and HTTP server for API testing
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Router *router.Router
}

// NewTestServer creates a new test server with real database.
// Domain events go through the transactional outbox, same as production.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)
	log := zap.NewNop()

	// Repositories
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	manufacturerRepo := persistence.NewGormManufacturerRepository(testDB.DB)
	outboxRepo := event.NewGormOutboxRepository(testDB.DB)

	// Events are written to the outbox table inside the request
	serializer := event.NewEventSerializer()
	publisher := event.NewOutboxPublisher(outboxRepo, serializer)

	// Services
	productService := catalogapp.NewProductService(productRepo, manufacturerRepo, publisher, log)
	manufacturerService := catalogapp.NewManufacturerService(manufacturerRepo, productRepo, publisher, log)

	// Handlers
	productHandler := handler.NewProductHandler(productService)
	manufacturerHandler := handler.NewManufacturerHandler(manufacturerService)

	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.PUT("/products/:id/price", productHandler.SetPrice)
	catalogRoutes.PUT("/products/:id/manufacturer", productHandler.SetManufacturer)
	catalogRoutes.POST("/products/:id/stock", productHandler.AdjustStock)
	catalogRoutes.POST("/products/:id/publish", productHandler.Publish)
	catalogRoutes.POST("/products/:id/archive", productHandler.Archive)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)

	catalogRoutes.POST("/manufacturers", manufacturerHandler.Create)
	catalogRoutes.GET("/manufacturers", manufacturerHandler.List)
	catalogRoutes.GET("/manufacturers/:id", manufacturerHandler.GetByID)
	catalogRoutes.PUT("/manufacturers/:id", manufacturerHandler.Update)
	catalogRoutes.DELETE("/manufacturers/:id", manufacturerHandler.Delete)

	r.Register(catalogRoutes)
	r.Setup()

	return &TestServer{
		DB:     testDB,
		Engine: engine,
		Router: r,
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta,omitempty"`
}

// TestProductAPI_CRUD tests the complete CRUD operations for products
func TestProductAPI_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	var createdProductID string

	t.Run("Create product", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"sku":         "API-PROD-001",
			"name":        "API Test Product",
			"description": "Product created via API test",
			"price":       100.00,
		}

		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		createdProductID = data["id"].(string)
		assert.NotEmpty(t, createdProductID)
		assert.Equal(t, "API-PROD-001", data["sku"])
		assert.Equal(t, "API Test Product", data["name"])
		assert.Equal(t, "draft", data["status"])
		assert.Equal(t, "USD", data["currency"])
	})

	t.Run("Create writes an outbox entry", func(t *testing.T) {
		var count int64
		err := ts.DB.DB.Raw("SELECT COUNT(*) FROM outbox_entries WHERE event_type = ?", "ProductCreated").Scan(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Get product by ID", func(t *testing.T) {
		require.NotEmpty(t, createdProductID, "Product ID should be set from Create test")

		w := ts.Request(http.MethodGet, "/api/v1/products/"+createdProductID, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, createdProductID, data["id"])
		assert.Equal(t, "API-PROD-001", data["sku"])
	})

	t.Run("Get product by SKU", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products/sku/API-PROD-001", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "API-PROD-001", data["sku"])
	})

	t.Run("Update product", func(t *testing.T) {
		require.NotEmpty(t, createdProductID)

		reqBody := map[string]interface{}{
			"name":        "Updated API Product",
			"description": "Updated description",
		}

		w := ts.Request(http.MethodPut, "/api/v1/products/"+createdProductID, reqBody)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Updated API Product", data["name"])
		assert.Equal(t, "Updated description", data["description"])
	})

	t.Run("Set product price", func(t *testing.T) {
		require.NotEmpty(t, createdProductID)

		reqBody := map[string]interface{}{
			"price": 149.99,
		}

		w := ts.Request(http.MethodPut, "/api/v1/products/"+createdProductID+"/price", reqBody)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "149.99", data["price"])
	})

	t.Run("Delete draft product fails", func(t *testing.T) {
		require.NotEmpty(t, createdProductID)

		// Only archived products can be deleted
		w := ts.Request(http.MethodDelete, "/api/v1/products/"+createdProductID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Archive then delete product", func(t *testing.T) {
		require.NotEmpty(t, createdProductID)

		w := ts.Request(http.MethodPost, "/api/v1/products/"+createdProductID+"/archive", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodDelete, "/api/v1/products/"+createdProductID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		// Verify product is gone
		w = ts.Request(http.MethodGet, "/api/v1/products/"+createdProductID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestProductAPI_Lifecycle tests publish/archive transitions over HTTP
func TestProductAPI_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	reqBody := map[string]interface{}{
		"sku":   "LIFECYCLE-PROD-001",
		"name":  "Lifecycle Test Product",
		"price": 25.00,
	}

	w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &createResp)
	require.NoError(t, err)

	productID := createResp.Data.(map[string]interface{})["id"].(string)

	t.Run("Publish draft product", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/publish", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "published", data["status"])
	})

	t.Run("Publish twice fails", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/publish", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Success)
	})

	t.Run("Archive published product", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/archive", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "archived", data["status"])
	})

	t.Run("Cannot republish archived product", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/publish", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Success)
	})
}

// TestProductAPI_Stock tests stock adjustment over HTTP
func TestProductAPI_Stock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	reqBody := map[string]interface{}{
		"sku":            "STOCK-PROD-001",
		"name":           "Stock Test Product",
		"price":          10.00,
		"stock_quantity": 5,
	}

	w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &createResp)
	require.NoError(t, err)

	productID := createResp.Data.(map[string]interface{})["id"].(string)

	t.Run("Positive adjustment", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/stock", map[string]interface{}{"delta": 20})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(25), data["stock_quantity"])
	})

	t.Run("Negative adjustment", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/stock", map[string]interface{}{"delta": -10})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(15), data["stock_quantity"])
	})

	t.Run("Adjustment below zero fails", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/stock", map[string]interface{}{"delta": -100})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_INSUFFICIENT_STOCK", resp.Error.Code)
	})
}

// TestProductAPI_Manufacturer tests linking products to manufacturers
func TestProductAPI_Manufacturer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	// Create a manufacturer
	w := ts.Request(http.MethodPost, "/api/v1/manufacturers", map[string]interface{}{
		"name":    "Acme Devices",
		"country": "US",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var mfrResp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &mfrResp)
	require.NoError(t, err)
	manufacturerID := mfrResp.Data.(map[string]interface{})["id"].(string)

	// Create a product
	w = ts.Request(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"sku":   "MFR-PROD-001",
		"name":  "Linked Product",
		"price": 42.00,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var prodResp APIResponse
	err = json.Unmarshal(w.Body.Bytes(), &prodResp)
	require.NoError(t, err)
	productID := prodResp.Data.(map[string]interface{})["id"].(string)

	t.Run("Assign manufacturer", func(t *testing.T) {
		w := ts.Request(http.MethodPut, "/api/v1/products/"+productID+"/manufacturer", map[string]interface{}{
			"manufacturer_id": manufacturerID,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, manufacturerID, data["manufacturer_id"])
	})

	t.Run("Manufacturer with products cannot be deleted", func(t *testing.T) {
		w := ts.Request(http.MethodDelete, "/api/v1/manufacturers/"+manufacturerID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Clear manufacturer", func(t *testing.T) {
		w := ts.Request(http.MethodPut, "/api/v1/products/"+productID+"/manufacturer", map[string]interface{}{
			"manufacturer_id": nil,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Nil(t, data["manufacturer_id"])
	})

	t.Run("Assign unknown manufacturer fails", func(t *testing.T) {
		w := ts.Request(http.MethodPut, "/api/v1/products/"+productID+"/manufacturer", map[string]interface{}{
			"manufacturer_id": uuid.New().String(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestProductAPI_List tests listing with pagination and filtering
func TestProductAPI_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	// Create multiple products
	for i := 1; i <= 15; i++ {
		reqBody := map[string]interface{}{
			"sku":   fmt.Sprintf("LIST-PROD-%03d", i),
			"name":  fmt.Sprintf("List Product %d", i),
			"price": float64(i * 10),
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("List with default pagination", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products?page=1&page_size=20", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Meta)
		assert.Equal(t, int64(15), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
	})

	t.Run("List with custom pagination", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products?page=2&page_size=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 5, resp.Meta.PageSize)

		data := resp.Data.([]interface{})
		assert.Len(t, data, 5)
	})

	t.Run("List with search filter", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products?page=1&page_size=20&search=List+Product+1", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		// Matches "List Product 1" plus 10-15
		data := resp.Data.([]interface{})
		assert.Len(t, data, 7)
	})

	t.Run("List with price range", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products?page=1&page_size=20&min_price=40&max_price=60", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		// Products priced 40, 50, 60
		data := resp.Data.([]interface{})
		assert.Len(t, data, 3)
	})

	t.Run("List with status filter", func(t *testing.T) {
		// Publish one product
		w := ts.Request(http.MethodGet, "/api/v1/products/sku/LIST-PROD-001", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var getResp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &getResp)
		require.NoError(t, err)
		productID := getResp.Data.(map[string]interface{})["id"].(string)

		w = ts.Request(http.MethodPost, "/api/v1/products/"+productID+"/publish", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.Request(http.MethodGet, "/api/v1/products?page=1&page_size=20&status=published", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err = json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})
}

// TestProductAPI_Validation tests request validation errors
func TestProductAPI_Validation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	t.Run("Create with missing required fields", func(t *testing.T) {
		// Missing sku
		reqBody := map[string]interface{}{
			"name":  "Test Product",
			"price": 10.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Missing name
		reqBody = map[string]interface{}{
			"sku":   "TEST-001",
			"price": 10.00,
		}
		w = ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Missing price
		reqBody = map[string]interface{}{
			"sku":  "TEST-001",
			"name": "Test Product",
		}
		w = ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Create with invalid SKU length", func(t *testing.T) {
		// SKU too long (max 50)
		reqBody := map[string]interface{}{
			"sku":   "THIS-SKU-IS-WAY-TOO-LONG-FOR-A-PRODUCT-SKU-AND-SHOULD-FAIL",
			"name":  "Test Product",
			"price": 10.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Create with negative price", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"sku":   "NEG-PRICE-001",
			"name":  "Negative Price Product",
			"price": -5.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get with invalid UUID", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update non-existent product", func(t *testing.T) {
		nonExistentID := uuid.New().String()
		reqBody := map[string]interface{}{
			"name": "Updated Name",
		}
		w := ts.Request(http.MethodPut, "/api/v1/products/"+nonExistentID, reqBody)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete non-existent product", func(t *testing.T) {
		nonExistentID := uuid.New().String()
		w := ts.Request(http.MethodDelete, "/api/v1/products/"+nonExistentID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestProductAPI_DuplicateSKU tests duplicate SKU handling
func TestProductAPI_DuplicateSKU(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	reqBody := map[string]interface{}{
		"sku":   "DUPE-SKU-001",
		"name":  "First Product",
		"price": 10.00,
	}
	w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Create with duplicate SKU fails", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"sku":   "DUPE-SKU-001",
			"name":  "Second Product",
			"price": 10.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_ALREADY_EXISTS", resp.Error.Code)
	})

	t.Run("SKU comparison is case-insensitive", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"sku":   "dupe-sku-001",
			"name":  "Lowercase SKU Product",
			"price": 10.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// TestProductAPI_Concurrency tests concurrent operations
func TestProductAPI_Concurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	t.Run("Concurrent product creation", func(t *testing.T) {
		const workers = 10

		var wg sync.WaitGroup
		codes := make([]int, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				reqBody := map[string]interface{}{
					"sku":   fmt.Sprintf("CONCURRENT-PROD-%03d", idx),
					"name":  fmt.Sprintf("Concurrent Product %d", idx),
					"price": 10.00,
				}
				w := ts.Request(http.MethodPost, "/api/v1/products", reqBody)
				codes[idx] = w.Code
			}(i)
		}
		wg.Wait()

		// All should succeed since SKUs are unique
		for i, code := range codes {
			assert.Equal(t, http.StatusCreated, code, "product %d", i)
		}

		w := ts.Request(http.MethodGet, "/api/v1/products?page=1&page_size=20", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(workers), resp.Meta.Total)
	})
}
