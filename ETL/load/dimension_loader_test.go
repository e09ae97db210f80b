package load

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

func newDimensionLoader(t *testing.T) (*DimensionLoader, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDimensionLoader(db, utils.NewNopLogger()), mock
}

func TestReconcileFactoriesFromOrders(t *testing.T) {
	loader, mock := newDimensionLoader(t)

	// INSERT IGNORE затрагивает только новые коды фабрик
	mock.ExpectExec(regexp.QuoteMeta(factoryDimFromOrdersQuery)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	added, err := loader.ReconcileFactories(models.OrderKind)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileFactoriesFromSales(t *testing.T) {
	loader, mock := newDimensionLoader(t)

	mock.ExpectExec(regexp.QuoteMeta(factoryDimFromSalesQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := loader.ReconcileFactories(models.SalesKind)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileProducts(t *testing.T) {
	loader, mock := newDimensionLoader(t)

	mock.ExpectExec(regexp.QuoteMeta(productDimFromOrdersQuery)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	added, err := loader.ReconcileProducts(models.OrderKind)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileProductsError(t *testing.T) {
	loader, mock := newDimensionLoader(t)

	mock.ExpectExec(regexp.QuoteMeta(productDimFromSalesQuery)).
		WillReturnError(assert.AnError)

	_, err := loader.ReconcileProducts(models.SalesKind)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
