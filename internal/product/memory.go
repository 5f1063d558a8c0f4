package product

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore is a mutex-guarded catalog used by the memory store driver and
// in tests. All stock changes happen under one lock.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]*Product
}

func NewMemoryStore(seed []Product) *MemoryStore {
	s := &MemoryStore{products: make(map[int64]*Product, len(seed))}
	for i := range seed {
		p := seed[i]
		s.products[p.ID] = &p
	}
	return s
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(opts.Search))
	cat := strings.TrimSpace(opts.Category)

	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if cat != "" && p.Category != cat {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch opts.Sort {
		case SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case SortRating:
			if !a.Rating.Equal(b.Rating) {
				return a.Rating.GreaterThan(b.Rating)
			}
		}
		return a.ID > b.ID
	})

	return out, nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, id int64, qty int) error {
	return s.DecrementBatch(ctx, []StockLine{{ProductID: id, Quantity: qty}})
}

// DecrementBatch takes stock for every line or for none of them.
func (s *MemoryStore) DecrementBatch(_ context.Context, lines []StockLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Quantities for the same product are summed before checking.
	need := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		need[l.ProductID] += l.Quantity
	}

	for id, qty := range need {
		p, ok := s.products[id]
		if !ok {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, id)
		}
		if p.Stock < qty {
			return fmt.Errorf("%w: product %d", ErrInsufficientStock, id)
		}
	}

	for id, qty := range need {
		s.products[id].Stock -= qty
	}
	return nil
}

// DefaultCatalog is the starter catalog served by the memory driver.
func DefaultCatalog() []Product {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	item := func(id int64, name, category, desc string, price int64, rating string, stock int) Product {
		return Product{
			ID:          id,
			Name:        name,
			Description: desc,
			Price:       decimal.NewFromInt(price),
			Category:    category,
			Rating:      decimal.RequireFromString(rating),
			Stock:       stock,
			CreatedAt:   created.Add(time.Duration(id) * time.Hour),
		}
	}

	return []Product{
		item(1, "Wireless Headphones", "Electronics", "Comfortable, long battery life.", 3999, "4.5", 25),
		item(2, "Sneakers", "Fashion", "Lightweight everyday sneakers.", 2999, "4.2", 40),
		item(3, "Blender", "Home & Living", "Powerful motor, easy clean jar.", 4599, "4.0", 15),
		item(4, "Smartphone", "Electronics", "Fast, great camera, long-lasting battery.", 19999, "4.7", 10),
		item(5, "Backpack", "Fashion", "Durable, multiple compartments.", 1990, "4.1", 30),
		item(6, "Electric Kettle", "Home & Living", "Auto shut-off, 1.7L capacity.", 2499, "4.3", 20),
	}
}
