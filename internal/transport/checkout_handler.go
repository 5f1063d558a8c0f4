package transport

import (
	"errors"
	"net/http"

	"sokoni-be/internal/checkout"
	"sokoni-be/internal/logger"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/order"
	"sokoni-be/internal/utils"

	"go.uber.org/zap"
)

const (
	emptyCartWarning = "Cart is empty"
	browseLocation   = "/products"
)

type checkoutInvalidResponse struct {
	Warning  string            `json:"warning"`
	Errors   map[string]string `json:"errors"`
	Checkout *checkout.Summary `json:"checkout"`
}

type orderResponse struct {
	Order *order.Order `json:"order"`
}

func (h *Handler) PreviewCheckout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := checkout.Form{
		County:   q.Get("county"),
		Delivery: q.Get("delivery"),
		Payment:  q.Get("payment"),
	}

	sum, err := h.Checkout.Preview(r.Context(), middleware.SessionID(r.Context()), form)
	if errors.Is(err, checkout.ErrEmptyCart) {
		redirectWithWarning(w, browseLocation, emptyCartWarning)
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("checkout preview failed", zap.Error(err))
		utils.WriteJSONError(w, "checkout unavailable", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, sum)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("handler", "PlaceOrder"))

	form := checkout.Form{
		Name:     r.FormValue("name"),
		Phone:    r.FormValue("phone"),
		County:   r.FormValue("county"),
		Address:  r.FormValue("address"),
		Delivery: r.FormValue("delivery"),
		Payment:  r.FormValue("payment"),
	}

	ctx := r.Context()
	o, err := h.Checkout.PlaceOrder(ctx, middleware.SessionID(ctx), middleware.CustomerRef(ctx), form)

	var verr *checkout.ValidationError
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusCreated, orderResponse{Order: o})
	case errors.Is(err, checkout.ErrEmptyCart):
		redirectWithWarning(w, browseLocation, emptyCartWarning)
	case errors.As(err, &verr):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, checkoutInvalidResponse{
			Warning:  checkout.ValidationWarning,
			Errors:   verr.Fields,
			Checkout: verr.Summary,
		})
	case errors.Is(err, order.ErrInsufficientStock):
		utils.WriteJSONError(w, "Some items are no longer in stock", http.StatusConflict)
	default:
		log.Error("place order failed", zap.Error(err))
		utils.WriteJSONError(w, "could not place order", http.StatusInternalServerError)
	}
}
