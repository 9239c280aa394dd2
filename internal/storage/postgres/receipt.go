package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/gymshop/internal/domain/receipt"
)

const (
	insertReceiptSQL = `INSERT INTO receipts (total_price, created_at) VALUES ($1, $2) RETURNING id`

	insertReceiptItemSQL = `INSERT INTO receipt_items (receipt_id, product_id, quantity) VALUES ($1, $2, $3)`

	getReceiptSQL = `SELECT id, total_price, created_at FROM receipts WHERE id = $1`

	listReceiptItemsSQL = `SELECT receipt_items.product_id, products.name, products.price, receipt_items.quantity
		FROM receipt_items
		JOIN products ON receipt_items.product_id = products.id
		WHERE receipt_items.receipt_id = $1
		ORDER BY receipt_items.id`
)

var _ receipt.Repository = (*ReceiptRepository)(nil)

// ReceiptRepository implements receipt.Repository backed by PostgreSQL.
type ReceiptRepository struct {
	db DB
}

// NewReceiptRepository returns a ReceiptRepository that uses the given pool.
func NewReceiptRepository(db DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts the receipt and its items in one transaction and sets r.ID.
// Item prices are not stored; lookups read them from the products table.
func (r *ReceiptRepository) Create(ctx context.Context, rc *receipt.Receipt) error {
	var id int64
	err := inTx(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertReceiptSQL, rc.TotalPrice, rc.Date).Scan(&id); err != nil {
			return fmt.Errorf("inserting receipt: %w", err)
		}
		for _, it := range rc.Items {
			if _, err := tx.Exec(ctx, insertReceiptItemSQL, id, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("inserting item for product %d: %w", it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating receipt: %w", err)
	}
	rc.ID = id
	return nil
}

// Find reads a receipt and its items inside one read-only transaction, so a
// single pooled connection is held and released on every return path.
// Returns receipt.ErrNotFound when no receipt has the given id.
func (r *ReceiptRepository) Find(ctx context.Context, id int64) (*receipt.Receipt, error) {
	var rc *receipt.Receipt
	err := inTx(ctx, r.db, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var err error
		if rc, err = findReceipt(ctx, tx, id); err != nil {
			return err
		}
		rc.Items, err = findReceiptItems(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			return nil, receipt.ErrNotFound
		}
		return nil, fmt.Errorf("finding receipt %d: %w", id, err)
	}
	return rc, nil
}

func findReceipt(ctx context.Context, tx pgx.Tx, id int64) (*receipt.Receipt, error) {
	rows, err := tx.Query(ctx, getReceiptSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying receipt: %w", err)
	}
	rc, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (receipt.Receipt, error) {
		var (
			rc        receipt.Receipt
			total     decimal.Decimal
			createdAt time.Time
		)
		err := row.Scan(&rc.ID, &total, &createdAt)
		rc.TotalPrice = total
		rc.Date = createdAt.UTC()
		return rc, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, receipt.ErrNotFound
		}
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}
	return &rc, nil
}

func findReceiptItems(ctx context.Context, tx pgx.Tx, id int64) ([]receipt.LineItem, error) {
	rows, err := tx.Query(ctx, listReceiptItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying receipt items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanLineItem)
	if err != nil {
		return nil, fmt.Errorf("scanning receipt items: %w", err)
	}
	return items, nil
}

func scanLineItem(row pgx.CollectableRow) (receipt.LineItem, error) {
	var (
		it        receipt.LineItem
		productID int32
		price     decimal.Decimal
		quantity  int32
	)
	err := row.Scan(&productID, &it.Name, &price, &quantity)
	it.ProductID = int(productID)
	it.UnitPrice = price.Round(2)
	it.Quantity = int(quantity)
	return it, err
}
