package transport

import (
	"errors"
	"net/http"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/logger"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.Carts.View(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		h.cartError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, view)
}

// AddToCart adds one unit, or the optional "quantity" form value.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteJSONError(w, "product not found", http.StatusNotFound)
		return
	}

	qty := cart.DefaultQuantity
	if raw := r.FormValue("quantity"); raw != "" {
		qty = cart.ParseQuantity(raw)
	}

	count, err := h.Carts.Add(r.Context(), middleware.SessionID(r.Context()), id, qty)
	if err != nil {
		h.cartError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

// UpdateCart sets the quantity of line "pid" to "qty". Quantity is parsed
// leniently and zero removes the line.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(r.FormValue("pid"))
	if !ok {
		utils.WriteJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	count, err := h.Carts.SetQuantity(r.Context(), middleware.SessionID(r.Context()), id, cart.ParseQuantity(r.FormValue("qty")))
	if err != nil {
		h.cartError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	count, err := h.Carts.Remove(r.Context(), middleware.SessionID(r.Context()), id)
	if err != nil {
		h.cartError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *Handler) cartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		utils.WriteJSONError(w, "product not found", http.StatusNotFound)
	case errors.Is(err, cart.ErrSessionRequired):
		utils.WriteJSONError(w, "session required", http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("cart request failed", zap.Error(err))
		utils.WriteJSONError(w, "cart unavailable", http.StatusInternalServerError)
	}
}
