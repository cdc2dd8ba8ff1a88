package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByStatus(ctx context.Context, status catalog.ProductStatus, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByManufacturer(ctx context.Context, manufacturerID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, manufacturerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, manufacturerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

// MockManufacturerRepository is a mock implementation of catalog.ManufacturerRepository
type MockManufacturerRepository struct {
	mock.Mock
}

func (m *MockManufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Manufacturer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) FindByName(ctx context.Context, name string) (*catalog.Manufacturer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Manufacturer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) Save(ctx context.Context, manufacturer *catalog.Manufacturer) error {
	args := m.Called(ctx, manufacturer)
	return args.Error(0)
}

func (m *MockManufacturerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockManufacturerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// noopEventPublisher swallows events in tests
type noopEventPublisher struct{}

func (noopEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return nil
}

func newProductTestRouter(productRepo *MockProductRepository, manufacturerRepo *MockManufacturerRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := catalogapp.NewProductService(productRepo, manufacturerRepo, noopEventPublisher{}, zap.NewNop())
	h := NewProductHandler(service)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/products", h.Create)
	v1.GET("/products", h.List)
	v1.GET("/products/:id", h.GetByID)
	v1.GET("/products/sku/:sku", h.GetBySKU)
	v1.PUT("/products/:id", h.Update)
	v1.PUT("/products/:id/price", h.SetPrice)
	v1.POST("/products/:id/stock", h.AdjustStock)
	v1.POST("/products/:id/publish", h.Publish)
	v1.POST("/products/:id/archive", h.Archive)
	v1.DELETE("/products/:id", h.Delete)
	return router
}

func newDraftProduct(t *testing.T, sku, name string, price string) *catalog.Product {
	t.Helper()
	money, err := valueobject.NewMoneyFromString(price, valueobject.DefaultCurrency)
	require.NoError(t, err)
	product, err := catalog.NewProduct(sku, name, money)
	require.NoError(t, err)
	return product
}

func TestProductHandler_Create(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	productRepo.On("ExistsBySKU", mock.Anything, "WIDGET-001").Return(false, nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	body := mustJSON(t, map[string]any{
		"sku":            "WIDGET-001",
		"name":           "Widget",
		"description":    "A fine widget",
		"price":          "19.99",
		"stock_quantity": 5,
		"tags":           []string{"widgets", "new"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool                       `json:"success"`
		Data    catalogapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "WIDGET-001", resp.Data.SKU)
	assert.Equal(t, "draft", resp.Data.Status)
	assert.Equal(t, 5, resp.Data.StockQuantity)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_Create_DuplicateSKU(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	productRepo.On("ExistsBySKU", mock.Anything, "WIDGET-001").Return(true, nil)

	body := mustJSON(t, map[string]any{
		"sku":   "WIDGET-001",
		"name":  "Widget",
		"price": "19.99",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_EXISTS")
	productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductHandler_Create_MissingPrice(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	body := mustJSON(t, map[string]any{
		"sku":  "WIDGET-001",
		"name": "Widget",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByID(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "WIDGET-001")
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	missing := uuid.New()
	productRepo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+missing.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_GetByID_InvalidID(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetBySKU(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindBySKU", mock.Anything, "WIDGET-001").Return(product, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/sku/WIDGET-001", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), product.ID.String())
}

func TestProductHandler_List(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	first := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	second := newDraftProduct(t, "WIDGET-002", "Gadget", "29.99")
	productRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]catalog.Product{*first, *second}, nil)
	productRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return(int64(2), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&page_size=20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                           `json:"success"`
		Data    []catalogapp.ProductListResponse `json:"data"`
		Meta    struct {
			Total    int64 `json:"total"`
			Page     int   `json:"page"`
			PageSize int   `json:"page_size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestProductHandler_List_StatusFilterPassedThrough(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	productRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "published"
	})).Return([]catalog.Product{}, nil)
	productRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?status=published", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	productRepo.AssertExpectations(t)
}

func TestProductHandler_List_InvalidStatus(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?status=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_Update(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	body := mustJSON(t, map[string]any{"name": "Widget Mk II"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+product.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Widget Mk II")
}

func TestProductHandler_SetPrice(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	body := mustJSON(t, map[string]any{"price": "24.50"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+product.ID.String()+"/price", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data catalogapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Price.Equal(decimal.RequireFromString("24.50")))
}

func TestProductHandler_AdjustStock(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	require.NoError(t, product.AdjustStock(10))
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	body := mustJSON(t, map[string]any{"delta": -4})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data catalogapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Data.StockQuantity)
}

func TestProductHandler_AdjustStock_Insufficient(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	body := mustJSON(t, map[string]any{"delta": -1})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductHandler_Publish(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/publish", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "published")
}

func TestProductHandler_Delete_PublishedRejected(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	require.NoError(t, product.Publish())
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+product.ID.String(), nil)
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PRODUCT_PUBLISHED")
	productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductHandler_Delete(t *testing.T) {
	productRepo := new(MockProductRepository)
	manufacturerRepo := new(MockManufacturerRepository)
	router := newProductTestRouter(productRepo, manufacturerRepo)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	require.NoError(t, product.Archive())
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Delete", mock.Anything, product.ID).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+product.ID.String(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	productRepo.AssertExpectations(t)
}
