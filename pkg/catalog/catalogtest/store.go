// Package catalogtest provides an in-memory record store for tests.
package catalogtest

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/database"
)

// Store mimics database.ProductStore, including its sentinel errors and the
// rejection of stock underflow. It counts calls per operation.
type Store struct {
	mu       sync.Mutex
	products map[int64]models.Product
	nextID   int64
	calls    map[string]int
	fail     error
	now      func() time.Time
}

// NewStore returns a store holding seed.
func NewStore(seed ...models.Product) *Store {
	s := &Store{
		products: make(map[int64]models.Product),
		nextID:   1,
		calls:    make(map[string]int),
		now:      time.Now,
	}
	for _, p := range seed {
		s.products[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// Fail makes every following call return err; nil heals the store.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// Calls reports how often op ran: list, category, get, create, adjust, stats or ping.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Len reports how many products are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// enter must be called with mu held.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.fail
}

func (s *Store) filter(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListProducts(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list"); err != nil {
		return nil, err
	}
	return s.filter(func(models.Product) bool { return true }), nil
}

func (s *Store) ListProductsByCategory(_ context.Context, category string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("category"); err != nil {
		return nil, err
	}
	return s.filter(func(p models.Product) bool { return p.Category == category }), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("get"); err != nil {
		return models.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateProduct(_ context.Context, np models.NewProduct) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("create"); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		ID:          s.nextID,
		Name:        np.Name,
		Description: np.Description,
		Price:       *np.Price,
		Stock:       np.StockValue(),
		Category:    np.CategoryValue(),
		CreatedAt:   models.FormatTimestamp(s.now()),
	}
	s.nextID++
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) AdjustStock(_ context.Context, id, delta int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("adjust"); err != nil {
		return models.Product{}, err
	}
	if delta < math.MinInt32 || delta > math.MaxInt32 {
		return models.Product{}, database.ErrStockOutOfRange
	}
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	if p.Stock+delta > math.MaxInt32 {
		return models.Product{}, database.ErrStockOutOfRange
	}
	if p.Stock+delta < 0 {
		return models.Product{}, database.ErrInsufficientStock
	}
	p.Stock += delta
	s.products[id] = p
	return p, nil
}

func (s *Store) Stats(context.Context) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("stats"); err != nil {
		return models.Stats{}, err
	}
	st := models.Stats{TotalProducts: int64(len(s.products))}
	cats := map[string]struct{}{}
	for _, p := range s.products {
		st.TotalStock += p.Stock
		cats[p.Category] = struct{}{}
	}
	st.TotalCategories = int64(len(cats))
	return st, nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter("ping")
}
