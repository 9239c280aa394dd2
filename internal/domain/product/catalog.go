package product

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Catalog is a fixed, read-only set of products. It is safe for concurrent
// use because nothing mutates it after construction.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// NewCatalog builds a catalog preserving the given order. A later product
// with a duplicate ID replaces the earlier one in lookups.
func NewCatalog(products ...Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// Default returns the storefront's built-in catalog.
func Default() *Catalog {
	return NewCatalog(
		Product{
			ID:    1,
			Name:  "Creatine",
			Price: decimal.RequireFromString("19.99"),
			Image: "images/creatine_skull.png",
			Info:  "For juicy pumps!",
		},
		Product{
			ID:    2,
			Name:  "Pre-Workout",
			Price: decimal.RequireFromString("24.99"),
			Image: "images/pre-workout_skull.png",
			Info:  "To energies you workouts!",
		},
		Product{
			ID:    3,
			Name:  "Protein Powder",
			Price: decimal.RequireFromString("29.99"),
			Image: "images/protein_powder_skull.png",
			Info:  "To hit your protein goals!",
		},
	)
}

// List returns every product in catalog order.
func (c *Catalog) List() []Product {
	return slices.Clone(c.products)
}

// FindByID returns the product with the given id or ErrNotFound.
func (c *Catalog) FindByID(id int) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return c.products[i], nil
}
