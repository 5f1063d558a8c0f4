package transport

import (
	"errors"
	"net/http"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/product"
	"sokoni-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	res, err := h.Products.List(r.Context(), product.ListOptions{
		Search:   q.Get("q"),
		Category: q.Get("cat"),
		Sort:     product.ParseSort(q.Get("sort")),
	})
	if err != nil {
		utils.WriteJSONError(w, "failed to load products", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteJSONError(w, "product not found", http.StatusNotFound)
		return
	}

	res, err := h.Products.Detail(r.Context(), id)
	if errors.Is(err, product.ErrProductNotFound) {
		utils.WriteJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to load product", zap.Int64("product_id", id), zap.Error(err))
		utils.WriteJSONError(w, "failed to load product", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}
