package checkout

import (
	"strings"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/payment"
	"sokoni-be/internal/shipping"

	"github.com/shopspring/decimal"
)

const (
	DefaultCounty   = shipping.CapitalRegion
	DefaultDelivery = string(shipping.DeliveryStandard)
	DefaultPayment  = string(payment.MethodMpesa)
)

// Form is the customer's checkout submission.
type Form struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	County   string `json:"county"`
	Address  string `json:"address"`
	Delivery string `json:"delivery"`
	Payment  string `json:"payment"`
}

// normalize trims every field and fills county, delivery and payment with
// their defaults when left blank.
func (f Form) normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.County = strings.TrimSpace(f.County)
	f.Address = strings.TrimSpace(f.Address)
	f.Delivery = strings.TrimSpace(f.Delivery)
	f.Payment = strings.TrimSpace(f.Payment)

	if f.County == "" {
		f.County = DefaultCounty
	}
	if f.Delivery == "" {
		f.Delivery = DefaultDelivery
	}
	if f.Payment == "" {
		f.Payment = DefaultPayment
	}
	return f
}

// Summary is the priced checkout shown before and after a failed submission.
type Summary struct {
	Lines       []cart.Line     `json:"items"`
	Count       int             `json:"cart_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
	Form        Form            `json:"form"`
	Counties    []string        `json:"counties"`
	// CountyListed is false when the region is billed at the outside-Nairobi
	// rate without being on the county list.
	CountyListed bool `json:"county_listed"`
}
