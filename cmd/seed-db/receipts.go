package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/gymshop/internal/domain/cart"
	"github.com/xenking/gymshop/internal/domain/product"
	"github.com/xenking/gymshop/internal/domain/receipt"
)

type receiptJSON struct {
	TotalPrice *decimal.Decimal `json:"total_price"`
	Date       time.Time        `json:"date"`
	Items      []struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	} `json:"items"`
}

// readReceipts parses a JSON array of receipts. Files ending in .gz are
// decompressed first. Items are priced from the catalog; a missing total is
// computed from them.
func readReceipts(path string, catalog *product.Catalog) ([]receipt.Receipt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var raw []receiptJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	out := make([]receipt.Receipt, 0, len(raw))
	for i, rj := range raw {
		rc, err := rj.toReceipt(catalog)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: receipt %d", path, i)
		}
		out = append(out, rc)
	}
	return out, nil
}

func (rj receiptJSON) toReceipt(catalog *product.Catalog) (receipt.Receipt, error) {
	if len(rj.Items) == 0 {
		return receipt.Receipt{}, receipt.ErrEmptyCart
	}
	if rj.Date.IsZero() {
		return receipt.Receipt{}, errors.New("date is required")
	}

	rc := receipt.Receipt{Date: rj.Date.UTC()}
	total := decimal.Zero
	for _, it := range rj.Items {
		if it.Quantity < 1 || it.Quantity > cart.MaxQuantity {
			return receipt.Receipt{}, errors.Errorf("product %d: invalid quantity %d", it.ProductID, it.Quantity)
		}
		p, err := catalog.FindByID(it.ProductID)
		if err != nil {
			return receipt.Receipt{}, &receipt.ProductNotFoundError{ProductID: it.ProductID}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		rc.Items = append(rc.Items, receipt.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price.Round(2),
		})
	}

	rc.TotalPrice = total.Round(2)
	if rj.TotalPrice != nil {
		rc.TotalPrice = rj.TotalPrice.Round(2)
	}
	return rc, nil
}
