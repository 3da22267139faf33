package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
	"github.com/abelikov/gocatalog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// mockCatalogService is a mock implementation of the CatalogService interface
type mockCatalogService struct {
	product   *service.ProductDto
	products  []service.ProductDto
	page      *service.Page
	available bool
	error     error
}

func (m *mockCatalogService) FindByID(_ context.Context, _ int64) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) Create(_ context.Context, _ service.ProductInput) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) Update(_ context.Context, _ int64, _ service.ProductInput) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) DeleteByID(_ context.Context, _ int64) error {
	return m.error
}

func (m *mockCatalogService) CheckStockAvailability(_ context.Context, _ int64, _ int32) (bool, error) {
	if m.error != nil {
		return false, m.error
	}
	return m.available, nil
}

func (m *mockCatalogService) List(_ context.Context, _, _ int, _, _ string) (*service.Page, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockCatalogService) Search(_ context.Context, _ string, _, _ int, _, _ string) (*service.Page, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockCatalogService) ByQuantityGreaterThan(_ context.Context, _ int32) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) ByPriceRange(_ context.Context, _, _ decimal.Decimal) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) OrderedByName(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) OrderedByPriceAsc(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) OrderedByPriceDesc(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) OrderedByCreatedDesc(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func laptopDto(t *testing.T) *service.ProductDto {
	t.Helper()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &service.ProductDto{
		ID:          1,
		Name:        "Laptop",
		Description: "High-performance laptop with 16GB RAM",
		Price:       decimal.RequireFromString("1299.99"),
		Quantity:    50,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func Test_ProductAPI_FindByID(t *testing.T) {
	dto := laptopDto(t)
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockCatalogService{product: dto},
			productID:    "1",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, dto),
		},
		{
			name:         "Error - invalid id",
			mockService:  mockCatalogService{},
			productID:    "not-a-number",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid ID: not-a-number"}),
		},
		{
			name:         "Error - non-positive id",
			mockService:  mockCatalogService{},
			productID:    "0",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid ID: 0"}),
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: fmt.Errorf("fetch: %w", cerrors.ErrProductNotFound)},
			productID:    "42",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product not found"}),
		},
		{
			name:         "Error - storage failure",
			mockService:  mockCatalogService{error: fmt.Errorf("fetch: %w", cerrors.ErrStorageFailure)},
			productID:    "1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve product with ID 1"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_Create(t *testing.T) {
	dto := laptopDto(t)
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:        "Success - product created",
			mockService: mockCatalogService{product: dto},
			requestBody: toJSON(t, service.ProductInput{
				Name:        "Laptop",
				Description: "High-performance laptop with 16GB RAM",
				Price:       decimal.RequireFromString("1299.99"),
				Quantity:    50,
			}),
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, dto),
		},
		{
			name:         "Error - invalid json",
			mockService:  mockCatalogService{},
			requestBody:  `invalid json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - validation failed",
			mockService:  mockCatalogService{},
			requestBody:  `{"name":"","description":"","price":"10.00","quantity":-1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{
				ValidationErrors: map[string]string{
					"Name":        "failed on rule: required",
					"Description": "failed on rule: required",
					"Quantity":    "failed on rule: gte",
				},
			}),
		},
		{
			name:        "Error - duplicate name",
			mockService: mockCatalogService{error: fmt.Errorf("%w: %q", cerrors.ErrDuplicateProductName, "Laptop")},
			requestBody: toJSON(t, service.ProductInput{
				Name:        "Laptop",
				Description: "High-performance laptop with 16GB RAM",
				Price:       decimal.RequireFromString("1299.99"),
				Quantity:    50,
			}),
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "A product with this name already exists"}),
		},
		{
			name:        "Error - business validation failed",
			mockService: mockCatalogService{error: fmt.Errorf("%w: price must have at most 2 fractional digits", cerrors.ErrInvalidArgument)},
			requestBody: toJSON(t, service.ProductInput{
				Name:        "Laptop",
				Description: "High-performance laptop with 16GB RAM",
				Price:       decimal.RequireFromString("9.999"),
				Quantity:    50,
			}),
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "invalid argument: price must have at most 2 fractional digits"}),
		},
		{
			name:        "Error - service error",
			mockService: mockCatalogService{error: errors.New("service unavailable")},
			requestBody: toJSON(t, service.ProductInput{
				Name:        "Laptop",
				Description: "High-performance laptop with 16GB RAM",
				Price:       decimal.RequireFromString("1299.99"),
				Quantity:    50,
			}),
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to create product"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_Update(t *testing.T) {
	dto := laptopDto(t)
	body := toJSON(t, service.ProductInput{
		Name:        "Laptop",
		Description: "High-performance laptop with 16GB RAM",
		Price:       decimal.RequireFromString("1299.99"),
		Quantity:    50,
	})

	testCases := []struct {
		name         string
		mockService  mockCatalogService
		productID    string
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			mockService:  mockCatalogService{product: dto},
			productID:    "1",
			requestBody:  body,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, dto),
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: fmt.Errorf("update: %w", cerrors.ErrProductNotFound)},
			productID:    "42",
			requestBody:  body,
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product not found"}),
		},
		{
			name:         "Error - rename collision",
			mockService:  mockCatalogService{error: fmt.Errorf("%w: %q", cerrors.ErrDuplicateProductName, "Laptop")},
			productID:    "2",
			requestBody:  body,
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "A product with this name already exists"}),
		},
		{
			name:         "Error - invalid json",
			mockService:  mockCatalogService{},
			productID:    "1",
			requestBody:  `invalid json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+tc.productID, strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			api.Update(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_DeleteByID(t *testing.T) {
	t.Run("Success - product deleted", func(t *testing.T) {
		// given
		api := NewHandler(&mockCatalogService{}, testLogger())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
		req.SetPathValue("id", "1")
		rr := httptest.NewRecorder()

		// when
		api.DeleteByID(rr, req)

		// then
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String(), "response body should be empty")
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		api := NewHandler(&mockCatalogService{error: cerrors.ErrProductNotFound}, testLogger())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/42", nil)
		req.SetPathValue("id", "42")
		rr := httptest.NewRecorder()

		// when
		api.DeleteByID(rr, req)

		// then
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, toJSON(t, ErrorResponse{Error: "Product not found"}), rr.Body.String())
	})
}

func Test_ProductAPI_List(t *testing.T) {
	dto := laptopDto(t)
	page := &service.Page{
		Content:       []service.ProductDto{*dto},
		Page:          0,
		Size:          10,
		TotalElements: 1,
		TotalPages:    1,
	}

	testCases := []struct {
		name         string
		mockService  mockCatalogService
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - default paging",
			mockService:  mockCatalogService{page: page},
			target:       "/api/v1/products",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, page),
		},
		{
			name:         "Success - with search term",
			mockService:  mockCatalogService{page: page},
			target:       "/api/v1/products?search=laptop",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, page),
		},
		{
			name:         "Error - page not a number",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products?page=not-a-number",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid page number: not-a-number"}),
		},
		{
			name:         "Error - unknown sort key rejected by service",
			mockService:  mockCatalogService{error: fmt.Errorf("%w: unsupported sort key %q", cerrors.ErrInvalidArgument, "quantity")},
			target:       "/api/v1/products?sortBy=quantity",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: `invalid argument: unsupported sort key "quantity"`}),
		},
		{
			name:         "Error - service error",
			mockService:  mockCatalogService{error: errors.New("service unavailable")},
			target:       "/api/v1/products",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to fetch products"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()

			// when
			api.List(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_CheckStock(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		productID    string
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - stock available",
			mockService:  mockCatalogService{available: true},
			productID:    "1",
			target:       "/api/v1/products/1/stock?quantity=10",
			expectedCode: http.StatusOK,
			expectedBody: `true`,
		},
		{
			name:         "Success - stock not available",
			mockService:  mockCatalogService{available: false},
			productID:    "1",
			target:       "/api/v1/products/1/stock?quantity=100",
			expectedCode: http.StatusOK,
			expectedBody: `false`,
		},
		{
			name:         "Error - quantity missing",
			mockService:  mockCatalogService{},
			productID:    "1",
			target:       "/api/v1/products/1/stock",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "quantity url parameter is required"}),
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: fmt.Errorf("fetch: %w", cerrors.ErrProductNotFound)},
			productID:    "42",
			target:       "/api/v1/products/42/stock?quantity=1",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product not found"}),
		},
		{
			name:         "Error - negative quantity rejected by service",
			mockService:  mockCatalogService{error: fmt.Errorf("%w: requested quantity cannot be negative", cerrors.ErrInvalidArgument)},
			productID:    "1",
			target:       "/api/v1/products/1/stock?quantity=-1",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "invalid argument: requested quantity cannot be negative"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			api.CheckStock(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_ByQuantity(t *testing.T) {
	dto := laptopDto(t)
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - products found",
			mockService:  mockCatalogService{products: []service.ProductDto{*dto}},
			target:       "/api/v1/products/quantity?min=10",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, []service.ProductDto{*dto}),
		},
		{
			name:         "Success - no products",
			mockService:  mockCatalogService{products: []service.ProductDto{}},
			target:       "/api/v1/products/quantity?min=1000",
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - min missing",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products/quantity",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "min url parameter is required"}),
		},
		{
			name:         "Error - min not a number",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products/quantity?min=ten",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid min number: ten"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()

			// when
			api.ByQuantity(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_ByPriceRange(t *testing.T) {
	dto := laptopDto(t)
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - products found",
			mockService:  mockCatalogService{products: []service.ProductDto{*dto}},
			target:       "/api/v1/products/price-range?min=100&max=2000",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, []service.ProductDto{*dto}),
		},
		{
			name:         "Error - min missing",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products/price-range?max=2000",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "min url parameter is required"}),
		},
		{
			name:         "Error - max not a number",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products/price-range?min=100&max=lots",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid max number: lots"}),
		},
		{
			name:         "Error - inverted bounds rejected by service",
			mockService:  mockCatalogService{error: fmt.Errorf("%w: min price cannot exceed max price", cerrors.ErrInvalidArgument)},
			target:       "/api/v1/products/price-range?min=2000&max=100",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "invalid argument: min price cannot exceed max price"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()

			// when
			api.ByPriceRange(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_SortedRoutes(t *testing.T) {
	dto := laptopDto(t)
	paths := []string{
		"/api/v1/products/sorted/name",
		"/api/v1/products/sorted/price-asc",
		"/api/v1/products/sorted/price-desc",
		"/api/v1/products/sorted/newest",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			// given
			api := NewHandler(&mockCatalogService{products: []service.ProductDto{*dto}}, testLogger())
			mux := chi.NewRouter()
			api.RegisterRoutes(mux)
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()

			// when
			mux.ServeHTTP(rr, req)

			// then
			assert.Equal(t, http.StatusOK, rr.Code, "status code should match")
			assert.JSONEq(t, toJSON(t, []service.ProductDto{*dto}), rr.Body.String())
		})
	}
}

func Test_ProductAPI_HealthCheck(t *testing.T) {
	// given
	api := NewHandler(nil, testLogger()) // No service needed for health check
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	// when
	api.HealthCheck(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code, "status code should be 200 OK")
	assert.Empty(t, rr.Body.String(), "response body should be empty")
}
