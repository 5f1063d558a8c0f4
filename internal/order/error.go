package order

import (
	"errors"

	"sokoni-be/internal/product"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("order status transition not allowed")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrNoItems              = errors.New("order has no items")

	// ErrInsufficientStock is the catalog error so callers can match either.
	ErrInsufficientStock = product.ErrInsufficientStock
)
