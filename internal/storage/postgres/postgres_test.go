package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/go-faster/errors"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gymshop/db"
)

func TestRunMigrations(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(db.Schema)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, RunMigrations(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Error(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(db.Schema)).
		WillReturnError(errors.New("permission denied"))

	err := RunMigrations(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running migrations")
}
