package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned by Checkout when there is nothing to buy.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when no receipt exists for an id.
	ErrNotFound = errors.New("receipt not found")
)

// ProductNotFoundError indicates a cart entry references a product that is
// not in the catalog.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// Receipt is the record of a completed purchase.
type Receipt struct {
	ID         int64
	TotalPrice decimal.Decimal
	Date       time.Time
	Items      []LineItem
}

// LineItem is one purchased product. UnitPrice is rounded to two places.
type LineItem struct {
	ProductID int
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Repository persists receipts and reads them back.
type Repository interface {
	// Create stores the receipt and its items and sets r.ID.
	Create(ctx context.Context, r *Receipt) error
	// Find returns the receipt and its items or ErrNotFound.
	Find(ctx context.Context, id int64) (*Receipt, error)
}

// Notifier is told about every issued receipt.
type Notifier interface {
	ReceiptIssued(ctx context.Context, r *Receipt) error
}
