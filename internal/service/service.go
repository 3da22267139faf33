// Package service implements the catalog business logic: record validation,
// name uniqueness, and the query planning layered on top of the product store.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
	"github.com/abelikov/gocatalog/internal/store"
	"github.com/shopspring/decimal"
)

// CatalogService defines the operations for managing and querying products.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Create validates and adds a new product to the catalog.
	// Returns ErrInvalidArgument on malformed input and
	// ErrDuplicateProductName when the name is already taken.
	Create(ctx context.Context, input ProductInput) (*ProductDto, error)

	// Update replaces the mutable fields of an existing product.
	// Returns ErrProductNotFound, ErrInvalidArgument or ErrDuplicateProductName.
	Update(ctx context.Context, id int64, input ProductInput) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// CheckStockAvailability reports whether the stored quantity covers the
	// requested quantity. Point-in-time read; it does not reserve stock.
	CheckStockAvailability(ctx context.Context, id int64, requested int32) (bool, error)

	// List returns one page of the catalog in the requested order.
	List(ctx context.Context, page, size int, sortBy, sortDir string) (*Page, error)

	// Search behaves like List filtered by a case-insensitive substring match
	// over name or description. A blank term is identical to List.
	Search(ctx context.Context, term string, page, size int, sortBy, sortDir string) (*Page, error)

	// ByQuantityGreaterThan returns all products with quantity above the threshold.
	ByQuantityGreaterThan(ctx context.Context, min int32) ([]ProductDto, error)

	// ByPriceRange returns all products priced within [min, max].
	// Returns ErrInvalidArgument if min > max or either bound is negative.
	ByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]ProductDto, error)

	// OrderedByName returns the full catalog ordered by name ascending.
	OrderedByName(ctx context.Context) ([]ProductDto, error)

	// OrderedByPriceAsc returns the full catalog ordered by price ascending.
	OrderedByPriceAsc(ctx context.Context) ([]ProductDto, error)

	// OrderedByPriceDesc returns the full catalog ordered by price descending.
	OrderedByPriceDesc(ctx context.Context) ([]ProductDto, error)

	// OrderedByCreatedDesc returns the full catalog ordered by creation time,
	// newest first.
	OrderedByCreatedDesc(ctx context.Context) ([]ProductDto, error)
}

// Service implements CatalogService. It is stateless between calls; every
// read and write round-trips to the product store.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided store.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductInput carries the caller-supplied fields of a create or update.
// Price is an exact decimal; it accepts both JSON numbers and strings.
type ProductInput struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"required,min=2,max=500"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"    validate:"gte=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

const (
	nameMinLen        = 2
	nameMaxLen        = 100
	descriptionMinLen = 2
	descriptionMaxLen = 500
)

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// Create validates the candidate, rejects duplicate names and inserts the
// product. The existence check is a fast path for a friendly error; the
// store's unique index is the authoritative backstop under concurrency.
func (s *Service) Create(ctx context.Context, input ProductInput) (*ProductDto, error) {
	input, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	taken, err := s.repository.ExistsByNameFold(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check product name %q: %w", input.Name, err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", cerrors.ErrDuplicateProductName, input.Name)
	}

	product, err := s.repository.Insert(ctx, store.CreateParams{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(product), nil
}

// Update validates the candidate and replaces all four mutable fields.
// A rename re-checks name uniqueness; renaming a product to its own current
// name never collides.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*ProductDto, error) {
	input, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	if !strings.EqualFold(existing.Name, input.Name) {
		taken, err := s.repository.ExistsByNameFold(ctx, input.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check product name %q: %w", input.Name, err)
		}
		if taken {
			return nil, fmt.Errorf("%w: %q", cerrors.ErrDuplicateProductName, input.Name)
		}
	}

	updated, err := s.repository.Update(ctx, id, store.UpdateParams{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return s.repository.DeleteByID(ctx, id)
}

// CheckStockAvailability reports whether the stored quantity covers the
// requested quantity. This is a point-in-time read with no reservation
// semantics; the quantity may change immediately after the check.
func (s *Service) CheckStockAvailability(ctx context.Context, id int64, requested int32) (bool, error) {
	if requested < 0 {
		return false, fmt.Errorf("%w: requested quantity cannot be negative", cerrors.ErrInvalidArgument)
	}
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return product.Quantity >= requested, nil
}

// validateInput trims the name and enforces the catalog record invariants.
// Returns the normalized input or ErrInvalidArgument.
func validateInput(input ProductInput) (ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, fmt.Errorf("%w: product name cannot be empty", cerrors.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(input.Name); n < nameMinLen || n > nameMaxLen {
		return input, fmt.Errorf("%w: product name must be between %d and %d characters",
			cerrors.ErrInvalidArgument, nameMinLen, nameMaxLen)
	}
	if n := utf8.RuneCountInString(input.Description); n < descriptionMinLen || n > descriptionMaxLen {
		return input, fmt.Errorf("%w: product description must be between %d and %d characters",
			cerrors.ErrInvalidArgument, descriptionMinLen, descriptionMaxLen)
	}
	if input.Price.IsNegative() {
		return input, fmt.Errorf("%w: price cannot be negative", cerrors.ErrInvalidArgument)
	}
	if input.Price.Exponent() < -2 {
		return input, fmt.Errorf("%w: price must have at most 2 fractional digits", cerrors.ErrInvalidArgument)
	}
	if input.Quantity < 0 {
		return input, fmt.Errorf("%w: quantity cannot be negative", cerrors.ErrInvalidArgument)
	}
	return input, nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
