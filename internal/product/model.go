package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Rating      decimal.Decimal `json:"rating"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SortOption string

const (
	SortNewest    SortOption = "new"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
	SortRating    SortOption = "rating"
)

// ParseSort maps a query value to a SortOption; unknown values sort newest first.
func ParseSort(v string) SortOption {
	switch s := SortOption(v); s {
	case SortPriceAsc, SortPriceDesc, SortRating:
		return s
	default:
		return SortNewest
	}
}

type ListOptions struct {
	Search   string
	Category string
	Sort     SortOption
}

// StockLine is one product/quantity pair to take out of inventory.
type StockLine struct {
	ProductID int64
	Quantity  int
}
