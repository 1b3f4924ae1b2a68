package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductsHandler is the plain catalog CRUD. Reads are public, writes go
// through the auth middleware passed to Register.
type ProductsHandler struct {
	Store orders.ProductStore
	Log   *zap.Logger
}

func (h *ProductsHandler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/products", h.list)
	r.Get("/products/{slug}", h.get)
	r.With(auth).Post("/products", h.create)
	r.With(auth).Put("/products/{slug}", h.update)
	r.With(auth).Delete("/products/{slug}", h.remove)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Store.List(r.Context())
	if err != nil {
		h.internal(w, r, "list products", err)
		return
	}
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.FindByRef(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.ProductInput
	if err := decodeStrict(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var p orders.Product
	if err := in.Apply(&p); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if err := h.Store.Create(r.Context(), &p); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in orders.ProductInput
	if err := decodeStrict(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.Store.FindByRef(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	// Every column is rewritten, left_in_stock included: the body is the
	// new stock count and replaces whatever placements left behind.
	if err := in.Apply(p); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if err := h.Store.Update(r.Context(), p); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.FindByRef(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if err := h.Store.Delete(r.Context(), p.ID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *orders.ValidationError
		missing *orders.ProductNotFoundError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Product with slug %q not found.", missing.Ref))
	case errors.Is(err, orders.ErrSlugTaken):
		writeError(w, http.StatusConflict, "Product with this slug already exists.")
	case errors.Is(err, orders.ErrProductInUse):
		writeError(w, http.StatusConflict, "Product is referenced by existing orders.")
	default:
		h.internal(w, r, "product store", err)
	}
}

func (h *ProductsHandler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Log.Error(op, zap.String("request_id", requestID(r)), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
