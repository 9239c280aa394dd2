package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	products := c.List()
	require.Len(t, products, 3)
	assert.Equal(t, "Creatine", products[0].Name)
	assert.Equal(t, "Pre-Workout", products[1].Name)
	assert.Equal(t, "Protein Powder", products[2].Name)
	assert.True(t, decimal.RequireFromString("19.99").Equal(products[0].Price))
}

func TestCatalog_FindByID(t *testing.T) {
	c := Default()

	for _, p := range c.List() {
		got, err := c.FindByID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, p.Name, got.Name)
	}

	for _, id := range []int{0, -1, 4, 99} {
		_, err := c.FindByID(id)
		assert.ErrorIs(t, err, ErrNotFound, "id %d", id)
	}
}

func TestCatalog_ListIsACopy(t *testing.T) {
	c := Default()

	products := c.List()
	products[0].Name = "changed"

	got, err := c.FindByID(products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Creatine", got.Name)
}

func TestNewCatalog_Empty(t *testing.T) {
	c := NewCatalog()

	assert.Empty(t, c.List())
	_, err := c.FindByID(1)
	assert.ErrorIs(t, err, ErrNotFound)
}
