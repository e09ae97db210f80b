package load

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

func newFactLoader(t *testing.T) (*FactLoader, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewFactLoader(db, utils.NewNopLogger()), mock
}

func TestPromoteOrders(t *testing.T) {
	loader, mock := newFactLoader(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(orderFactInsertQuery))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	// Конфликт бизнес-ключа обновляет меры, строка все равно считается продвинутой
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rows := []models.OrderFactRow{
		{OrderCode: "2201-0456-0001", ImportTimestamp: time.Now()},
		{OrderCode: "2201-0456-0002", ImportTimestamp: time.Now()},
	}

	promoted, rowErrors, err := loader.PromoteOrders(rows)

	require.NoError(t, err)
	assert.Equal(t, 2, promoted)
	assert.Empty(t, rowErrors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteOrdersRowErrorIsolated(t *testing.T) {
	loader, mock := newFactLoader(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(orderFactInsertQuery))
	prep.ExpectExec().WillReturnError(errors.New("incorrect datetime value"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rows := []models.OrderFactRow{
		{OrderCode: "2201-0456-0001", ImportTimestamp: time.Now()},
		{OrderCode: "2201-0457-0001", ImportTimestamp: time.Now()},
	}

	promoted, rowErrors, err := loader.PromoteOrders(rows)

	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0], "2201-0456-0001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteOrdersEmptyBatch(t *testing.T) {
	loader, mock := newFactLoader(t)

	promoted, rowErrors, err := loader.PromoteOrders(nil)

	require.NoError(t, err)
	assert.Equal(t, 0, promoted)
	assert.Empty(t, rowErrors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteSales(t *testing.T) {
	loader, mock := newFactLoader(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(salesFactInsertQuery))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	promoted, rowErrors, err := loader.PromoteSales([]models.SalesFactRow{
		{SalesCode: "2301-0001-0001", ImportTimestamp: time.Now()},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
	assert.Empty(t, rowErrors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteSalesCommitError(t *testing.T) {
	loader, mock := newFactLoader(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(salesFactInsertQuery))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))

	_, _, err := loader.PromoteSales([]models.SalesFactRow{
		{SalesCode: "2301-0001-0001", ImportTimestamp: time.Now()},
	})

	assert.Error(t, err)
}
