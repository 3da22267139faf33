package service

import (
	"context"
	"fmt"
	"strings"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
	"github.com/abelikov/gocatalog/internal/store"
	"github.com/shopspring/decimal"
)

// Page is a bounded slice of an ordered result set plus the total count of
// matching records and the derived page metadata.
type Page struct {
	Content       []ProductDto `json:"content"`
	Page          int          `json:"page"`
	Size          int          `json:"size"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
}

// sortKeys maps the caller-facing sort key names to store sort columns.
var sortKeys = map[string]store.SortKey{
	"id":        store.SortByID,
	"name":      store.SortByName,
	"price":     store.SortByPrice,
	"createdAt": store.SortByCreatedAt,
}

// List returns one page of the catalog in the requested order.
// page must be >= 0 and size >= 1; sortBy must be one of id, name, price,
// createdAt. Ordering is stable across calls: ties break by id ascending.
func (s *Service) List(ctx context.Context, page, size int, sortBy, sortDir string) (*Page, error) {
	return s.Search(ctx, "", page, size, sortBy, sortDir)
}

// Search returns one page of products whose name or description contains the
// term, case-insensitively. A blank term behaves identically to List.
// A term matching zero records yields an empty page, not an error.
func (s *Service) Search(ctx context.Context, term string, page, size int, sortBy, sortDir string) (*Page, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", cerrors.ErrInvalidArgument)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1", cerrors.ErrInvalidArgument)
	}
	orderBy, ok := sortKeys[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", cerrors.ErrInvalidArgument, sortBy)
	}

	records, total, err := s.repository.Scan(ctx, store.ScanQuery{
		Search:  strings.TrimSpace(term),
		OrderBy: orderBy,
		Desc:    strings.EqualFold(sortDir, "desc"),
		Offset:  int64(page) * int64(size),
		Limit:   int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return &Page{
		Content:       toDtos(records),
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages(total, size),
	}, nil
}

// ByQuantityGreaterThan returns all products with quantity strictly above min.
func (s *Service) ByQuantityGreaterThan(ctx context.Context, min int32) ([]ProductDto, error) {
	records, _, err := s.repository.Scan(ctx, store.ScanQuery{
		MinQuantity: &min,
		OrderBy:     store.SortByID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by quantity: %w", err)
	}
	return toDtos(records), nil
}

// ByPriceRange returns all products priced within [min, max] inclusive.
// Returns ErrInvalidArgument if min > max or either bound is negative.
func (s *Service) ByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]ProductDto, error) {
	if min.IsNegative() || max.IsNegative() {
		return nil, fmt.Errorf("%w: price bounds cannot be negative", cerrors.ErrInvalidArgument)
	}
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("%w: minimum price exceeds maximum price", cerrors.ErrInvalidArgument)
	}
	records, _, err := s.repository.Scan(ctx, store.ScanQuery{
		PriceMin: &min,
		PriceMax: &max,
		OrderBy:  store.SortByID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by price range: %w", err)
	}
	return toDtos(records), nil
}

// OrderedByName returns the full catalog ordered by name ascending.
func (s *Service) OrderedByName(ctx context.Context) ([]ProductDto, error) {
	return s.ordered(ctx, store.SortByName, false)
}

// OrderedByPriceAsc returns the full catalog ordered by price ascending.
func (s *Service) OrderedByPriceAsc(ctx context.Context) ([]ProductDto, error) {
	return s.ordered(ctx, store.SortByPrice, false)
}

// OrderedByPriceDesc returns the full catalog ordered by price descending.
func (s *Service) OrderedByPriceDesc(ctx context.Context) ([]ProductDto, error) {
	return s.ordered(ctx, store.SortByPrice, true)
}

// OrderedByCreatedDesc returns the full catalog ordered by creation time,
// newest first.
func (s *Service) OrderedByCreatedDesc(ctx context.Context) ([]ProductDto, error) {
	return s.ordered(ctx, store.SortByCreatedAt, true)
}

func (s *Service) ordered(ctx context.Context, key store.SortKey, desc bool) ([]ProductDto, error) {
	records, _, err := s.repository.Scan(ctx, store.ScanQuery{
		OrderBy: key,
		Desc:    desc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ordered products: %w", err)
	}
	return toDtos(records), nil
}

func toDtos(records []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(records))
	for i := range records {
		dtos[i] = *toDto(&records[i])
	}
	return dtos
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
