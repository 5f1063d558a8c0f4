package cart

import (
	"encoding/json"
	"strconv"
)

// Encode serializes the cart as {"<product id>": quantity}.
func Encode(c *Cart) ([]byte, error) {
	out := make(map[string]int, len(c.items))
	for id, q := range c.items {
		out[strconv.FormatInt(id, 10)] = q
	}
	return json.Marshal(out)
}

// Decode reads a session payload. Entries with a non-integer key or value, or
// a quantity below one, are skipped; skipped reports how many. A payload that
// is not a JSON object yields an empty cart.
func Decode(data []byte) (c *Cart, skipped int) {
	c = New()
	if len(data) == 0 {
		return c, 0
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return c, 1
	}

	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		var qty int
		if err := json.Unmarshal(v, &qty); err != nil || qty < 1 {
			skipped++
			continue
		}
		c.items[id] = qty
	}
	return c, skipped
}
