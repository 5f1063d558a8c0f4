package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrEmptyCart = errors.New("cart is empty")

const ValidationWarning = "Please provide your name and phone number"

// ValidationError is returned when the form is incomplete. It carries the
// already computed summary so the caller can show it again.
type ValidationError struct {
	Fields  map[string]string
	Summary *Summary
}

func (e *ValidationError) Error() string {
	return "checkout form is invalid"
}

func formatValidationError(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["form"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		default:
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return fields
}
