package cart

import (
	"strconv"
	"strings"
)

// DefaultQuantity is used when quantity input cannot be trusted.
const DefaultQuantity = 1

// ParseQuantity coerces raw form input into a quantity. Malformed or negative
// input becomes DefaultQuantity instead of an error; zero is kept so callers
// can treat it as removal.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return DefaultQuantity
	}
	return n
}
