package payment

type Method string

const (
	MethodMpesa Method = "mpesa"
	MethodCOD   Method = "cod"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Result is what the gateway hands back to checkout: a reference to store on
// the order and the status the order starts in.
type Result struct {
	Method    Method `json:"method"`
	Reference string `json:"reference"`
	Status    Status `json:"status"`
}

// ParseMethod maps a form value to a Method. "mobile_money" is accepted as an
// alias for mpesa; anything else is cash on delivery.
func ParseMethod(raw string) Method {
	switch raw {
	case "mpesa", "mobile_money":
		return MethodMpesa
	default:
		return MethodCOD
	}
}
