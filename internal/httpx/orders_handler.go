package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService is satisfied by *orders.Service.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []orders.ItemRequest) (*orders.Placement, error)
	GetOrder(ctx context.Context, userID uuid.UUID, number int64) (*orders.Placement, error)
}

// OrdersHandler serves /orders. Its routes must sit behind RequireUser.
type OrdersHandler struct {
	Service OrderService
	Log     *zap.Logger
}

const msgOrderNotFound = "Order not found"

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{number}", h.getOrder)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var items []orders.ItemRequest
	if err := decodeStrict(r.Body, &items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	placed, err := h.Service.PlaceOrder(r.Context(), userID, items)
	if err != nil {
		h.writePlaceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (h *OrdersHandler) writePlaceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  *orders.ValidationError
		missing  *orders.ProductNotFoundError
		shortage *orders.OrderPlacementFailedError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Product with slug %q not found.", missing.Ref))
	case errors.As(err, &shortage):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Not enough product with slug %q in stock.", shortage.Slug))
	default:
		h.Log.Error("place order", zap.String("request_id", requestID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgOrderNotFound)
		return
	}

	placed, err := h.Service.GetOrder(r.Context(), userID, number)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, msgOrderNotFound)
	case err != nil:
		h.Log.Error("get order", zap.Int64("number", number), zap.String("request_id", requestID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, placed)
	}
}
