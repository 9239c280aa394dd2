package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID    int
	Name  string
	Price decimal.Decimal
	// Image is a path relative to the static asset root.
	Image string
	Info  string
}

// Repository mirrors the catalog into relational storage so persisted
// receipt items can be joined against it.
type Repository interface {
	Sync(ctx context.Context, products []Product) error
	List(ctx context.Context) ([]Product, error)
}
