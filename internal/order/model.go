package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusDispatched},
	StatusPaid:       {StatusDispatched},
	StatusDispatched: {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDispatched, StatusDelivered:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to the next.
// Delivered is terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	CustomerRef      string          `json:"customer_ref"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone"`
	County           string          `json:"county"`
	Address          string          `json:"address"`
	Delivery         string          `json:"delivery"`
	Items            []Item          `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingFee      decimal.Decimal `json:"shipping_fee"`
	Total            decimal.Decimal `json:"total"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Item is a line frozen at order time. UnitPrice is the price paid, not the
// current catalog price.
type Item struct {
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}
