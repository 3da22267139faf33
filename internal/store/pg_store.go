package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

const productColumns = "id, name, description, price, quantity, created_at, updated_at"

// PgStore implements ProductStore using PostgreSQL as the data store.
// The unique index on lower(name) is the authoritative uniqueness backstop:
// concurrent inserts racing past the engine's existence check surface here
// as ErrDuplicateProductName.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Insert persists a new product, assigning its ID and timestamps.
func (p *PgStore) Insert(ctx context.Context, params CreateParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+productColumns,
		params.Name, params.Description, params.Price, params.Quantity,
	)
	product, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cerrors.ErrDuplicateProductName
		}
		return nil, storageFailure("insert product", err)
	}
	return product, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, storageFailure("find product by ID", err)
	}
	return product, nil
}

// ExistsByID reports whether a product with the given ID exists.
func (p *PgStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storageFailure("check product existence by ID", err)
	}
	return exists, nil
}

// ExistsByNameFold reports whether a product with the given name exists,
// compared case-insensitively.
func (p *PgStore) ExistsByNameFold(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE lower(name) = lower($1))`, name).Scan(&exists)
	if err != nil {
		return false, storageFailure("check product existence by name", err)
	}
	return exists, nil
}

// Update replaces the mutable fields of an existing product and refreshes UpdatedAt.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, params UpdateParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, quantity = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, params.Name, params.Description, params.Price, params.Quantity,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return nil, cerrors.ErrDuplicateProductName
		}
		return nil, storageFailure("update product", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return storageFailure("delete product by ID", err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// Scan executes an ordered, optionally filtered and paginated scan.
// Returns the matching page and the total matching count.
func (p *PgStore) Scan(ctx context.Context, q ScanQuery) ([]Product, int64, error) {
	where, args := buildFilter(q)

	var total int64
	err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, storageFailure("count products", err)
	}

	sql := `SELECT ` + productColumns + ` FROM products` + where + orderClause(q)
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, storageFailure("scan products", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, storageFailure("scan product row", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageFailure("iterate product rows", err)
	}
	return products, total, nil
}

// Count returns the total number of products.
func (p *PgStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return 0, storageFailure("count products", err)
	}
	return total, nil
}

// buildFilter translates the (at most one) ScanQuery filter into a WHERE clause.
func buildFilter(q ScanQuery) (string, []any) {
	switch {
	case q.Search != "":
		pattern := "%" + escapeLike(q.Search) + "%"
		return ` WHERE name ILIKE $1 OR description ILIKE $1`, []any{pattern}
	case q.MinQuantity != nil:
		return ` WHERE quantity > $1`, []any{*q.MinQuantity}
	case q.PriceMin != nil && q.PriceMax != nil:
		return ` WHERE price BETWEEN $1 AND $2`, []any{*q.PriceMin, *q.PriceMax}
	default:
		return "", nil
	}
}

// orderClause renders the ORDER BY clause for a scan. The sort column comes
// from the SortKey whitelist, never from caller input.
func orderClause(q ScanQuery) string {
	column := string(SortByID)
	switch q.OrderBy {
	case SortByID, SortByName, SortByPrice, SortByCreatedAt:
		column = string(q.OrderBy)
	}
	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}
	if column == string(SortByID) {
		return fmt.Sprintf(" ORDER BY id %s", direction)
	}
	// Tie-break by id ascending for a stable paging order.
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)
}

// escapeLike escapes LIKE metacharacters so a search term matches literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", cerrors.ErrStorageFailure, op, err)
}
