package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	cerrors "github.com/abelikov/gocatalog/internal/errors"
)

// inMemory implements ProductStore using an in-memory map.
// IDs are monotonic and never reused, mirroring a bigserial column.
// Name uniqueness is enforced under the store lock, making Insert and Update
// atomic the same way the unique index makes them atomic in PostgreSQL.
type inMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore backed by memory.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[int64]Product),
		nextID:   1,
	}
}

// Insert persists a new product, assigning its ID and timestamps.
func (s *inMemory) Insert(_ context.Context, params CreateParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(params.Name, 0) {
		return nil, cerrors.ErrDuplicateProductName
	}

	now := time.Now().UTC()
	product := Product{
		ID:          s.nextID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.products[product.ID] = product

	return &product, nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	return &p, nil
}

// ExistsByID reports whether a product with the given ID exists.
func (s *inMemory) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[id]
	return ok, nil
}

// ExistsByNameFold reports whether a product with the given name exists,
// compared case-insensitively.
func (s *inMemory) ExistsByNameFold(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nameTakenLocked(name, 0), nil
}

// Update replaces the mutable fields of an existing product.
func (s *inMemory) Update(_ context.Context, id int64, params UpdateParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	if s.nameTakenLocked(params.Name, id) {
		return nil, cerrors.ErrDuplicateProductName
	}

	p.Name = params.Name
	p.Description = params.Description
	p.Price = params.Price
	p.Quantity = params.Quantity
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p

	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return cerrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// Scan executes an ordered, optionally filtered and paginated scan.
func (s *inMemory) Scan(_ context.Context, q ScanQuery) ([]Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q)
	})

	total := int64(len(matched))
	if q.Limit <= 0 {
		return matched, total, nil
	}

	start := q.Offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Count returns the total number of products.
func (s *inMemory) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.products)), nil
}

// nameTakenLocked reports whether another product (id != exclude) already
// uses the folded name. Callers must hold the lock.
func (s *inMemory) nameTakenLocked(name string, exclude int64) bool {
	folded := strings.ToLower(name)
	for id, p := range s.products {
		if id != exclude && strings.ToLower(p.Name) == folded {
			return true
		}
	}
	return false
}

func matches(p Product, q ScanQuery) bool {
	switch {
	case q.Search != "":
		term := strings.ToLower(q.Search)
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	case q.MinQuantity != nil:
		return p.Quantity > *q.MinQuantity
	case q.PriceMin != nil && q.PriceMax != nil:
		return p.Price.Cmp(*q.PriceMin) >= 0 && p.Price.Cmp(*q.PriceMax) <= 0
	default:
		return true
	}
}

// less orders two products by the scan's sort key with an id-ascending tie break.
func less(a, b Product, q ScanQuery) bool {
	var cmp int
	switch q.OrderBy {
	case SortByName:
		cmp = strings.Compare(a.Name, b.Name)
	case SortByPrice:
		cmp = a.Price.Cmp(b.Price)
	case SortByCreatedAt:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	default:
		cmp = compareInt64(a.ID, b.ID)
	}
	if cmp == 0 {
		return a.ID < b.ID
	}
	if q.Desc {
		return cmp > 0
	}
	return cmp < 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
