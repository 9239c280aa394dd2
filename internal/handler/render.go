package handler

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	pageIndex    = "index.html"
	pageAboutUs  = "about_us.html"
	pageProduct  = "product_details.html"
	pageCart     = "cart.html"
	pageCheckout = "checkout.html"
	pageReceipt  = "receipt.html"
)

// page is the data every template receives. Data is page specific.
type page struct {
	Title     string
	CartCount int
	Data      any
}

type renderer struct {
	pages map[string]*template.Template
}

// newRenderer parses layout.html once and clones it for every page.
func newRenderer(fsys fs.FS, imageBaseURL string) (*renderer, error) {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"image": func(path string) string { return joinImage(imageBaseURL, path) },
	}
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse layout")
	}

	r := &renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageIndex, pageAboutUs, pageProduct, pageCart, pageCheckout, pageReceipt} {
		t, err := layout.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "clone layout for %s", name)
		}
		if _, err := t.ParseFS(fsys, name); err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

// render executes the page into a buffer first so a template failure still
// produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := h.pages.pages[name]
	if !ok {
		h.fail(w, r, errors.Errorf("unknown page %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.fail(w, r, errors.Wrapf(err, "render %s", name))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail logs err and answers 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
