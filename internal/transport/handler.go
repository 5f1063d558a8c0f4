package transport

import (
	"net/http"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/checkout"
	"sokoni-be/internal/metrics"
	"sokoni-be/internal/order"
	"sokoni-be/internal/product"
	"sokoni-be/internal/utils"
)

// Handler serves the storefront's JSON views.
type Handler struct {
	Products product.Service
	Carts    cart.Service
	Checkout checkout.Service
	Orders   order.Service
	Metrics  *metrics.Registry
	// Graph answers read-only GraphQL queries; /query is not mounted when nil.
	Graph http.Handler
}

type messageResponse struct {
	Warning  string `json:"warning,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type countResponse struct {
	Count int `json:"cart_count"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) ServeMetrics(w http.ResponseWriter, r *http.Request) {
	h.Metrics.Handler().ServeHTTP(w, r)
}

// redirectWithWarning answers with 303 and a JSON body explaining why.
func redirectWithWarning(w http.ResponseWriter, location, warning string) {
	w.Header().Set("Location", location)
	utils.WriteJSON(w, http.StatusSeeOther, messageResponse{Warning: warning, Redirect: location})
}
