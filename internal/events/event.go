package events

import (
	"time"

	"sokoni-be/internal/order"
)

const OrderPlacedQueue = "order.placed"

type OrderPlaced struct {
	EventType     string      `json:"event_type"`
	OrderNumber   string      `json:"order_number"`
	CustomerRef   string      `json:"customer_ref"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	Total         string      `json:"total"`
	Items         []OrderItem `json:"items"`
	Timestamp     time.Time   `json:"timestamp"`
}

type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func newOrderPlaced(o *order.Order, now time.Time) OrderPlaced {
	ev := OrderPlaced{
		EventType:     "OrderPlaced",
		OrderNumber:   o.OrderNumber,
		CustomerRef:   o.CustomerRef,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total.StringFixed(2),
		Timestamp:     now.UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}
	return ev
}
