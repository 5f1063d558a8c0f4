package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"sokoni-be/internal/product"
)

// BatchStock is the catalog write the memory repository needs.
type BatchStock interface {
	DecrementBatch(ctx context.Context, lines []product.StockLine) error
}

type MemoryRepository struct {
	mu     sync.RWMutex
	stock  BatchStock
	nextID int64
	orders map[string]*Order
}

func NewMemoryRepository(stock BatchStock) *MemoryRepository {
	return &MemoryRepository{
		stock:  stock,
		orders: make(map[string]*Order),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, o *Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.OrderNumber]; exists {
		return ErrDuplicateOrderNumber
	}

	lines := make([]product.StockLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, product.StockLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := r.stock.DecrementBatch(ctx, lines); err != nil {
		return err
	}

	r.nextID++
	o.ID = r.nextID
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.OrderNumber] = cloneOrder(o)
	return nil
}

func (r *MemoryRepository) GetByNumber(_ context.Context, number string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[number]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryRepository) ListByCustomer(_ context.Context, customerRef string) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Order
	for _, o := range r.orders {
		if o.CustomerRef == customerRef {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, number string, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[number]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Status != from {
		return ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp
}
