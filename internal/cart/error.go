package cart

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSessionRequired = errors.New("session id is required")
	ErrFailedLoadCart  = errors.New("failed to load cart")
	ErrFailedSaveCart  = errors.New("failed to save cart")
)
