// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
	"github.com/abelikov/gocatalog/internal/service"
	"github.com/abelikov/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog REST API.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/quantity", h.ByQuantity)
		r.Get("/price-range", h.ByPriceRange)

		r.Route("/sorted", func(r chi.Router) {
			r.Get("/name", h.sorted(service.CatalogService.OrderedByName))
			r.Get("/price-asc", h.sorted(service.CatalogService.OrderedByPriceAsc))
			r.Get("/price-desc", h.sorted(service.CatalogService.OrderedByPriceDesc))
			r.Get("/newest", h.sorted(service.CatalogService.OrderedByCreatedDesc))
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Get("/stock", h.CheckStock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List retrieves one page of products, optionally filtered by a search term.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.QueryIntDefault(r, w, mLogger, "page", 0)
	if !ok {
		return
	}
	size, ok := web.QueryIntDefault(r, w, mLogger, "size", 10)
	if !ok {
		return
	}
	sortBy := web.QueryDefault(r, "sortBy", "id")
	sortDir := web.QueryDefault(r, "sortDir", "asc")
	search := r.URL.Query().Get("search")

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"page", page, "size", size, "sortBy", sortBy, "sortDir", sortDir, "search", search)

	result, err := h.service.Search(r.Context(), search, page, size, sortBy, sortDir)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	input, ok := h.decodeInput(w, r, mLogger)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces the mutable fields of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r, mLogger)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// CheckStock reports whether the stored quantity covers the requested quantity.
func (h *Handler) CheckStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	quantity, ok := web.QueryInt(r, w, mLogger, "quantity")
	if !ok {
		return
	}

	available, err := h.service.CheckStockAvailability(r.Context(), id, int32(quantity))
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to check stock for product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, available)
}

// ByQuantity returns all products with quantity above the min threshold.
func (h *Handler) ByQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	min, ok := web.QueryInt(r, w, mLogger, "min")
	if !ok {
		return
	}

	list, err := h.service.ByQuantityGreaterThan(r.Context(), int32(min))
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ByPriceRange returns all products priced between min and max.
func (h *Handler) ByPriceRange(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	min, ok := h.queryDecimal(w, r, mLogger, "min")
	if !ok {
		return
	}
	max, ok := h.queryDecimal(w, r, mLogger, "max")
	if !ok {
		return
	}

	list, err := h.service.ByPriceRange(r.Context(), min, max)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// sorted adapts a fixed-order catalog query to an HTTP handler.
func (h *Handler) sorted(query func(service.CatalogService, context.Context) ([]service.ProductDto, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mLogger := h.loggerWithReqID(r)
		list, err := query(h.service, r.Context())
		if err != nil {
			h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
			return
		}
		web.RespondJSON(w, mLogger, http.StatusOK, list)
	}
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeInput decodes and validates a product payload.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (service.ProductInput, bool) {
	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return input, false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	return input, true
}

// queryDecimal parses a required decimal query parameter.
func (h *Handler) queryDecimal(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, key string) (decimal.Decimal, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return decimal.Decimal{}, false
	}
	return d, true
}

// respondServiceError maps the catalog error taxonomy to HTTP status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, cerrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	case errors.Is(err, cerrors.ErrDuplicateProductName):
		mLogger.WarnContext(r.Context(), "Duplicate product name", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "A product with this name already exists")
	case errors.Is(err, cerrors.ErrInvalidArgument):
		mLogger.WarnContext(r.Context(), "Invalid argument", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), "Unexpected service error", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
