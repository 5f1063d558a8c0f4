package cart

import (
	"sort"

	"sokoni-be/internal/product"

	"github.com/shopspring/decimal"
)

// Cart maps product id to quantity for one customer session. A zero quantity
// is never stored; it means the line is absent.
type Cart struct {
	items map[int64]int
	dirty bool
}

func New() *Cart {
	return &Cart{items: make(map[int64]int)}
}

// Add increments the stored quantity of productID by qty.
func (c *Cart) Add(productID int64, qty int) {
	if qty <= 0 {
		return
	}
	c.items[productID] += qty
	c.dirty = true
}

// Set overwrites the quantity of productID. Zero removes the line.
func (c *Cart) Set(productID int64, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	if c.items[productID] == qty {
		return
	}
	c.items[productID] = qty
	c.dirty = true
}

func (c *Cart) Remove(productID int64) {
	if _, ok := c.items[productID]; !ok {
		return
	}
	delete(c.items, productID)
	c.dirty = true
}

func (c *Cart) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = make(map[int64]int)
	c.dirty = true
}

func (c *Cart) Quantity(productID int64) int {
	return c.items[productID]
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ProductIDs returns the keys in ascending order.
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dirty reports whether the cart changed since it was loaded.
func (c *Cart) Dirty() bool {
	return c.dirty
}

func (c *Cart) markClean() {
	c.dirty = false
}

// Line is a cart entry joined against the catalog.
type Line struct {
	Product   *product.Product `json:"product"`
	Quantity  int              `json:"qty"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

// View is the priced cart returned to callers.
type View struct {
	Lines    []Line          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"cart_count"`
}

// LineCount sums the quantities of resolved lines.
func LineCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
