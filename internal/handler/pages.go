package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/gymshop/internal/domain/product"
)

// Home lists the catalog.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	h.render(w, r, http.StatusOK, pageIndex, page{
		Title:     "Shop",
		CartCount: sess.Cart().Count(),
		Data:      h.catalog.List(),
	})
}

// AboutUs renders the static about page.
func (h *Handler) AboutUs(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	h.render(w, r, http.StatusOK, pageAboutUs, page{
		Title:     "About us",
		CartCount: sess.Cart().Count(),
	})
}

// ProductDetails renders one product, or a plain 404 for an unknown id.
func (h *Handler) ProductDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	p, err := h.catalog.FindByID(id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.fail(w, r, err)
		return
	}

	sess := h.sessions.Load(r)
	h.render(w, r, http.StatusOK, pageProduct, page{
		Title:     p.Name,
		CartCount: sess.Cart().Count(),
		Data:      p,
	})
}
