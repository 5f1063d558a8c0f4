package transport

import (
	"errors"
	"net/http"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/order"
	"sokoni-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ordersResponse struct {
	Orders []*order.Order `json:"orders"`
}

// GetOrder shows an order to its owner or an admin. Anyone else gets a 404 so
// order numbers cannot be guessed.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "number"))
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	if !middleware.CanViewOrder(ctx, o.CustomerRef) {
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderResponse{Order: o})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.Orders.ListForCustomer(ctx, middleware.CustomerRef(ctx))
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	utils.WriteJSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "number"), order.Status(r.FormValue("status")))
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderResponse{Order: o})
}

func (h *Handler) orderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrInvalidStatus):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrInvalidTransition):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromCtx(r.Context()).Error("order request failed", zap.Error(err))
		utils.WriteJSONError(w, "order unavailable", http.StatusInternalServerError)
	}
}
