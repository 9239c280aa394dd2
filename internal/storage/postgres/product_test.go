package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gymshop/internal/domain/product"
)

func TestProductRepository_Sync(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	products := product.Default().List()

	mock.ExpectBeginTx(pgx.TxOptions{})
	for _, p := range products {
		mock.ExpectExec(regexp.QuoteMeta(upsertProductSQL)).
			WithArgs(p.ID, p.Name, p.Price, p.Image, p.Info).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Sync(context.Background(), products))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SyncError(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	products := product.Default().List()

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(regexp.QuoteMeta(upsertProductSQL)).
		WithArgs(products[0].ID, products[0].Name, products[0].Price, products[0].Image, products[0].Info).
		WillReturnError(errors.New("relation \"products\" does not exist"))
	mock.ExpectRollback()

	err := repo.Sync(context.Background(), products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upserting product 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(listProductsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "image", "info"}).
			AddRow(int32(1), "Creatine", decimal.RequireFromString("19.99"), "images/creatine_skull.png", "For juicy pumps!").
			AddRow(int32(2), "Pre-Workout", decimal.RequireFromString("24.99"), "images/pre-workout_skull.png", "To energies you workouts!"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "Creatine", got[0].Name)
	assert.Equal(t, "19.99", got[0].Price.String())
	assert.Equal(t, 2, got[1].ID)
}
