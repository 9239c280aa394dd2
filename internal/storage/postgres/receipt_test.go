package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gymshop/internal/domain/receipt"
)

var readOnly = pgx.TxOptions{AccessMode: pgx.ReadOnly}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestReceiptRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	date := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("69.97")
	rc := &receipt.Receipt{
		TotalPrice: total,
		Date:       date,
		Items: []receipt.LineItem{
			{ProductID: 1, Name: "Creatine", Quantity: 2},
			{ProductID: 3, Name: "Protein Powder", Quantity: 1},
		},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta(insertReceiptSQL)).
		WithArgs(total, date).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(regexp.QuoteMeta(insertReceiptItemSQL)).
		WithArgs(int64(42), 1, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(insertReceiptItemSQL)).
		WithArgs(int64(42), 3, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), rc))
	assert.Equal(t, int64(42), rc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_CreateItemError(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	date := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("19.99")
	rc := &receipt.Receipt{
		TotalPrice: total,
		Date:       date,
		Items:      []receipt.LineItem{{ProductID: 1, Quantity: 1}},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(regexp.QuoteMeta(insertReceiptSQL)).
		WithArgs(total, date).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(insertReceiptItemSQL)).
		WithArgs(int64(7), 1, 1).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting item for product 1")
	assert.Zero(t, rc.ID, "id must stay unset when nothing was committed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_Find(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	createdAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(readOnly)
	mock.ExpectQuery(regexp.QuoteMeta(getReceiptSQL)).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "total_price", "created_at"}).
			AddRow(int64(42), decimal.RequireFromString("69.97"), createdAt))
	mock.ExpectQuery(regexp.QuoteMeta(listReceiptItemsSQL)).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "price", "quantity"}).
			AddRow(int32(1), "Creatine", decimal.RequireFromString("19.99"), int32(2)).
			AddRow(int32(3), "Protein Powder", decimal.RequireFromString("29.99"), int32(1)))
	mock.ExpectCommit()

	rc, err := repo.Find(context.Background(), 42)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(42), rc.ID)
	assert.Equal(t, createdAt, rc.Date)
	assert.Equal(t, "69.97", rc.TotalPrice.String())
	require.Len(t, rc.Items, 2)
	assert.Equal(t, 1, rc.Items[0].ProductID)
	assert.Equal(t, "Creatine", rc.Items[0].Name)
	assert.Equal(t, 2, rc.Items[0].Quantity)
	assert.Equal(t, "19.99", rc.Items[0].UnitPrice.String())
	assert.Equal(t, "Protein Powder", rc.Items[1].Name)
	assert.Equal(t, 1, rc.Items[1].Quantity)
}

func TestReceiptRepository_FindNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	mock.ExpectBeginTx(readOnly)
	mock.ExpectQuery(regexp.QuoteMeta(getReceiptSQL)).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "total_price", "created_at"}))
	mock.ExpectRollback()

	rc, err := repo.Find(context.Background(), 404)
	require.ErrorIs(t, err, receipt.ErrNotFound)
	assert.Nil(t, rc)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_FindQueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	mock.ExpectBeginTx(readOnly)
	mock.ExpectQuery(regexp.QuoteMeta(getReceiptSQL)).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Find(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, receipt.ErrNotFound)
	assert.Contains(t, err.Error(), "finding receipt 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_FindBeginError(t *testing.T) {
	mock := newMock(t)
	repo := NewReceiptRepository(mock)

	mock.ExpectBeginTx(readOnly).WillReturnError(errors.New("pool closed"))

	_, err := repo.Find(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}
