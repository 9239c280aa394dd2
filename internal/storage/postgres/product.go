package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/gymshop/internal/domain/product"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, image, info)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, image = EXCLUDED.image, info = EXCLUDED.info`

	listProductsSQL = `SELECT id, name, price, image, info FROM products ORDER BY id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository mirrors the catalog into the products table.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Sync upserts every product in a single transaction.
func (r *ProductRepository) Sync(ctx context.Context, products []product.Product) error {
	err := inTx(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, p := range products {
			if _, err := tx.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price, p.Image, p.Info); err != nil {
				return fmt.Errorf("upserting product %d: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("syncing products: %w", err)
	}
	return nil
}

// List returns all stored products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p  product.Product
		id int32
	)
	err := row.Scan(&id, &p.Name, &p.Price, &p.Image, &p.Info)
	p.ID = int(id)
	return p, err
}
