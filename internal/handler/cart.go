package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/gymshop/internal/domain/cart"
	"github.com/xenking/gymshop/internal/domain/receipt"
)

var (
	invalidQuantityMessage = "Quantity must be a whole number between 1 and " + strconv.Itoa(cart.MaxQuantity) + " per product"
	cartFullMessage        = "Your cart cannot hold more than " + strconv.Itoa(cart.MaxEntries) + " different products"
)

// AddToCart merges the submitted quantity into the session's ledger and
// redirects to the cart. The product id is not checked against the catalog.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	raw, present := r.PostForm["quantity"]
	var value string
	if present {
		value = raw[0]
	}
	quantity, err := cart.ParseQuantity(value, present)
	if err != nil {
		http.Error(w, invalidQuantityMessage, http.StatusBadRequest)
		return
	}

	sess := h.sessions.Load(r)
	ledger := sess.Cart()
	if err := ledger.Add(id, quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrFull):
			http.Error(w, cartFullMessage, http.StatusBadRequest)
		case errors.Is(err, cart.ErrInvalidQuantity):
			http.Error(w, invalidQuantityMessage, http.StatusBadRequest)
		default:
			h.fail(w, r, err)
		}
		return
	}
	sess.SetCart(ledger)
	if err := sess.Save(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusFound)
}

// Cart renders the ledger resolved against the catalog.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	ledger := h.sessions.Load(r).Cart()
	h.render(w, r, http.StatusOK, pageCart, page{
		Title:     "Cart",
		CartCount: ledger.Count(),
		Data:      cart.Compute(ledger, h.catalog),
	})
}

// CheckoutForm renders the order confirmation form.
func (h *Handler) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageCheckout, page{
		Title:     "Checkout",
		CartCount: h.sessions.Load(r).Cart().Count(),
	})
}

// Checkout issues a receipt for the session's ledger and renders it. An empty
// ledger redirects back to the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	ledger := sess.Cart()

	rc, err := h.receipts.Checkout(r.Context(), ledger)
	if err != nil {
		h.checkoutError(w, r, ledger, err)
		return
	}

	sess.SetCart(ledger)
	if err := sess.Save(w, r); err != nil {
		zctx.From(r.Context()).Warn("Failed to clear cart",
			zap.Int64("receipt_id", rc.ID),
			zap.Error(err),
		)
	}
	h.render(w, r, http.StatusOK, pageReceipt, page{
		Title:     "Receipt",
		CartCount: ledger.Count(),
		Data:      rc,
	})
}

// checkoutError maps domain errors from Checkout to responses.
func (h *Handler) checkoutError(w http.ResponseWriter, r *http.Request, ledger *cart.Ledger, err error) {
	if errors.Is(err, receipt.ErrEmptyCart) {
		http.Redirect(w, r, "/cart", http.StatusFound)
		return
	}

	var pnfErr *receipt.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		h.render(w, r, http.StatusUnprocessableEntity, pageCheckout, page{
			Title:     "Checkout",
			CartCount: ledger.Count(),
			Data:      "Your cart contains a product that is no longer available: " + pnfErr.Error() + ".",
		})
		return
	}

	h.fail(w, r, err)
}

// Receipt renders a stored receipt. Unknown or malformed ids render the
// not-found notice with status 404.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	p := page{
		Title:     "Receipt",
		CartCount: h.sessions.Load(r).Cart().Count(),
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.render(w, r, http.StatusNotFound, pageReceipt, p)
		return
	}
	rc, err := h.receipts.Lookup(r.Context(), id)
	switch {
	case errors.Is(err, receipt.ErrNotFound):
		h.render(w, r, http.StatusNotFound, pageReceipt, p)
	case err != nil:
		h.fail(w, r, err)
	default:
		p.Data = rc
		h.render(w, r, http.StatusOK, pageReceipt, p)
	}
}
