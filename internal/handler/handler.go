// Package handler implements the storefront's HTML pages.
package handler

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/gymshop/internal/domain/cart"
	"github.com/xenking/gymshop/internal/domain/product"
	"github.com/xenking/gymshop/internal/domain/receipt"
	"github.com/xenking/gymshop/internal/session"
)

// Receipts issues and looks up receipts. It is implemented by
// *receipt.Service.
type Receipts interface {
	Checkout(ctx context.Context, l *cart.Ledger) (*receipt.Receipt, error)
	Lookup(ctx context.Context, id int64) (*receipt.Receipt, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to the catalog's relative image paths.
	ImageBaseURL string
	// Templates holds the page templates; Static is served under /static/.
	Templates fs.FS
	Static    fs.FS
}

// Handler serves the storefront pages.
type Handler struct {
	catalog  *product.Catalog
	receipts Receipts
	sessions *session.Store
	pages    *renderer
	static   fs.FS
}

// NewHandler parses the page templates and constructs a Handler.
func NewHandler(
	cfg Config,
	catalog *product.Catalog,
	receipts Receipts,
	sessions *session.Store,
) (*Handler, error) {
	pages, err := newRenderer(cfg.Templates, cfg.ImageBaseURL)
	if err != nil {
		return nil, err
	}
	return &Handler{
		catalog:  catalog,
		receipts: receipts,
		sessions: sessions,
		pages:    pages,
		static:   cfg.Static,
	}, nil
}

// Routes returns the router serving every storefront page.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Home)
	r.Get("/about_us", h.AboutUs)
	r.Get("/product/{id}", h.ProductDetails)
	r.Get("/add_to_cart/{id}", h.AddToCart)
	r.Post("/add_to_cart/{id}", h.AddToCart)
	r.Get("/cart", h.Cart)
	r.Get("/checkout", h.CheckoutForm)
	r.Post("/checkout", h.Checkout)
	r.Get("/receipt/{id}", h.Receipt)

	if h.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(h.static)))
	}
	return r
}

// joinImage prefixes a relative image path with base.
func joinImage(base, image string) string {
	if base == "" || strings.Contains(image, "://") || strings.HasPrefix(image, "/") {
		return image
	}
	return strings.TrimSuffix(base, "/") + "/" + image
}
