package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

type DeliveryOption string

const (
	DeliveryStandard DeliveryOption = "standard"
	DeliverySameDay  DeliveryOption = "same_day"
	DeliveryPickup   DeliveryOption = "pickup"
)

// CapitalRegion is the only region with the reduced base fee and same-day service.
const CapitalRegion = "Nairobi"

var (
	capitalFee = decimal.NewFromInt(200)
	regionFee  = decimal.NewFromInt(400)
	sameDayFee = decimal.NewFromInt(300)
)

var counties = []string{
	"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Kiambu",
	"Machakos", "Kajiado", "Uasin Gishu", "Nyeri", "Garissa",
}

// Counties returns the regions offered at checkout.
func Counties() []string {
	out := make([]string, len(counties))
	copy(out, counties)
	return out
}

// IsKnownCounty reports whether region is on the checkout allow-list.
func IsKnownCounty(region string) bool {
	region = strings.TrimSpace(region)
	for _, c := range counties {
		if c == region {
			return true
		}
	}
	return false
}

// Fee returns the shipping cost for a region and delivery option.
// Matching is exact and case-sensitive after trimming. Same-day outside the
// capital is billed at the regular base fee.
func Fee(region string, option DeliveryOption) decimal.Decimal {
	region = strings.TrimSpace(region)
	option = DeliveryOption(strings.TrimSpace(string(option)))

	base := regionFee
	if region == CapitalRegion {
		base = capitalFee
	}

	switch {
	case option == DeliveryPickup:
		return decimal.Zero
	case option == DeliverySameDay && region == CapitalRegion:
		return sameDayFee
	default:
		return base
	}
}
