// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog record as persisted by the store.
// ID is assigned by the store on insert and never reused after deletion.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateParams carries the fields required to insert a new product.
// Identity and timestamps are assigned by the store.
type CreateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
}

// UpdateParams replaces all mutable fields of an existing product.
// UpdatedAt is refreshed by the store; CreatedAt and ID are immutable.
type UpdateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
}

// SortKey identifies a column an ordered scan may sort by.
type SortKey string

const (
	SortByID        SortKey = "id"
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByCreatedAt SortKey = "created_at"
)

// ScanQuery describes a single ordered, optionally filtered and paginated scan.
// At most one filter is set: Search, MinQuantity, or the PriceMin/PriceMax pair.
// Ties are always broken by id ascending so repeated scans are stable.
type ScanQuery struct {
	// Search filters by case-insensitive substring over name or description.
	Search string
	// MinQuantity filters by quantity strictly greater than the given value.
	MinQuantity *int32
	// PriceMin and PriceMax filter by price between the two bounds, inclusive.
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal

	OrderBy SortKey
	Desc    bool

	// Offset and Limit bound the page. Limit <= 0 means no pagination.
	Offset int64
	Limit  int64
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Each operation is individually atomic; the name uniqueness backstop lives in
// the store itself (unique index on the folded name), so Insert and Update
// report ErrDuplicateProductName even when two callers race past the
// existence check.
type ProductStore interface {
	// Insert persists a new product, assigning its ID and timestamps.
	// Returns ErrDuplicateProductName if the folded name is already taken.
	Insert(ctx context.Context, params CreateParams) (*Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// ExistsByID reports whether a product with the given ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// ExistsByNameFold reports whether a product with the given name exists,
	// compared case-insensitively.
	ExistsByNameFold(ctx context.Context, name string) (bool, error)

	// Update replaces the mutable fields of an existing product and refreshes
	// its UpdatedAt timestamp.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrDuplicateProductName if the new folded name is already taken.
	Update(ctx context.Context, id int64, params UpdateParams) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Scan executes an ordered, optionally filtered and paginated scan and
	// returns the matching page together with the total matching count.
	Scan(ctx context.Context, q ScanQuery) ([]Product, int64, error)

	// Count returns the total number of products.
	Count(ctx context.Context) (int64, error)
}
