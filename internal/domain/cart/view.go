package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/gymshop/internal/domain/product"
)

// Catalog resolves product ids.
type Catalog interface {
	FindByID(id int) (product.Product, error)
}

// Line is a cart entry joined with its product.
type Line struct {
	Product  product.Product
	Quantity int
}

// Subtotal returns price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is the displayable state of a cart.
type View struct {
	Lines []Line
	Total decimal.Decimal
}

// Compute joins ledger entries against the catalog. Entries referencing
// unknown products are skipped and contribute nothing to the total.
func Compute(l *Ledger, c Catalog) View {
	v := View{Total: decimal.Zero}
	for _, e := range l.Entries() {
		p, err := c.FindByID(e.ProductID)
		if err != nil {
			continue
		}
		line := Line{Product: p, Quantity: e.Quantity}
		v.Lines = append(v.Lines, line)
		v.Total = v.Total.Add(line.Subtotal())
	}
	return v
}
