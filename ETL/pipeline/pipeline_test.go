package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

func newProcessor(t *testing.T) (*Processor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewProcessor(db, utils.NewNopLogger(), config.DefaultBusinessRules), mock
}

// writeExtractFile создает временный xlsx-файл с заголовком и данными
func writeExtractFile(t *testing.T, name string, columnCount int, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := make([]string, columnCount)
	for i := range header {
		header[i] = "col"
	}

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestProcessOrderFile(t *testing.T) {
	p, mock := newProcessor(t)

	// Две строки выгрузки: одна с допустимым префиксом ключа, одна — нет
	keep := make([]string, models.OrderColumnCount)
	keep[0] = "15/2/2024"   // order_date
	keep[4] = "2201-0456"   // order_code
	keep[5] = "30895.2"     // factory_code
	keep[7] = "555.0"       // product_code
	keep[8] = "Изделие"     // product_name
	keep[9] = "OK"          // qc
	keep[10] = "10"         // order_quantity
	keep[12] = "zk-ST-017"  // factory_order_code
	keep[14] = "1"          // numerical_order

	drop := make([]string, models.OrderColumnCount)
	drop[4] = "9901-0001"
	drop[9] = "OK"
	drop[14] = "1"

	path := writeExtractFile(t, "orders.xlsx", models.OrderColumnCount, [][]string{keep, drop})

	// Журнал обработки
	mock.ExpectExec("INSERT INTO etl_run_log").WillReturnResult(sqlmock.NewResult(7, 1))

	// Загрузка в staging
	mock.ExpectBegin()
	stagingPrep := mock.ExpectPrepare("INSERT INTO copr13")
	stagingPrep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	stagingPrep.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	// Водяная отметка пустого хранилища
	mock.ExpectQuery(`SELECT MAX\(import_timestamp\) FROM fact_order`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	orderDate := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	imported := time.Date(2024, 2, 16, 9, 0, 0, 0, time.UTC)

	stagingRows := sqlmock.NewRows([]string{
		"order_date", "order_code", "ct_date", "factory_code", "factory_order_code",
		"tax_type", "department", "salesman", "deposit_rate", "payment_registration_code",
		"payment_registration_name", "delivery_address", "product_code", "product_name",
		"qc", "warehouse_type", "order_quantity", "delivered_quantity",
		"package_order_quantity", "delivered_package_order_quantity", "unit", "package_unit",
		"estimated_delivery_date", "original_estimated_delivery_date", "pre_ct",
		"finish_code", "import_timestamp",
	}).AddRow(
		orderDate, "2201-0456-0001", nil, "30895.2", "zk-ST-017",
		nil, nil, nil, nil, nil,
		nil, nil, "555.0", "Изделие",
		"OK", nil, 10.0, nil,
		nil, nil, nil, nil,
		nil, nil, nil,
		nil, imported,
	).AddRow(
		nil, "9901-0001-0001", nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil, nil,
		"OK", nil, nil, nil,
		nil, nil, nil, nil,
		nil, nil, nil,
		nil, imported,
	)

	mock.ExpectQuery("FROM copr13").WillReturnRows(stagingRows)

	// Продвижение: только строка с допустимым префиксом, код составной
	// фабрики переназначен по маркеру ST, артефакт ".0" в коде продукта очищен
	mock.ExpectBegin()
	factPrep := mock.ExpectPrepare("INSERT INTO fact_order")
	factPrep.ExpectExec().WithArgs(
		sqlmock.AnyArg(), "2201-0456-0001", nil, "30895.1", "zk-ST-017",
		nil, nil, nil, nil, nil,
		nil, nil, "555", "Изделие",
		"OK", nil, 10.0, nil,
		nil, nil, nil, nil,
		nil, nil, nil,
		nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Сверка измерений
	mock.ExpectExec("INSERT IGNORE INTO dim_factory").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT IGNORE INTO dim_product").WillReturnResult(sqlmock.NewResult(0, 2))

	// Закрытие записи журнала
	mock.ExpectExec("UPDATE etl_run_log").WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := p.ProcessOrderFile(path)
	require.NoError(t, err)

	assert.Equal(t, "orders.xlsx", report.FileName)
	assert.Equal(t, models.OrderKind, report.Kind)
	assert.Equal(t, 2, report.StagingRows)
	assert.Equal(t, 0, report.Conflicts)
	assert.Equal(t, 0, report.SkippedRows)
	assert.Equal(t, 1, report.WarehouseRows)
	assert.Equal(t, 1, report.NewFactories)
	assert.Equal(t, 2, report.NewProducts)
	assert.Empty(t, report.Errors)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSalesFileNoNewRows(t *testing.T) {
	p, mock := newProcessor(t)

	row := make([]string, models.SalesColumnCount)
	row[0] = "20/2/2024" // sales_date
	row[2] = "2301-0001" // sales_code
	row[8] = "OK"        // qc

	path := writeExtractFile(t, "sales.xlsx", models.SalesColumnCount, [][]string{row})

	mock.ExpectExec("INSERT INTO etl_run_log").WillReturnResult(sqlmock.NewResult(8, 1))

	mock.ExpectBegin()
	stagingPrep := mock.ExpectPrepare("INSERT IGNORE INTO copr23")
	// Повтор уже загруженной строки игнорируется
	stagingPrep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	latest := time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT MAX\(import_timestamp\) FROM fact_sales`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(latest))

	// Новее отметки ничего нет — продвижение и сверка не выполняются
	mock.ExpectQuery("FROM copr23").WillReturnRows(sqlmock.NewRows([]string{
		"product_code", "product_name", "qc", "factory_code",
		"sales_date", "sales_code", "order_code", "sales_quantity",
		"unit", "package_sales_quantity", "package_unit",
		"department", "salesman", "warehouse_code", "warehouse_type",
		"import_code", "factory_order_code", "import_timestamp",
	}))

	mock.ExpectExec("UPDATE etl_run_log").WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := p.ProcessSalesFile(path)
	require.NoError(t, err)

	assert.Equal(t, models.SalesKind, report.Kind)
	assert.Equal(t, 0, report.StagingRows)
	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, 0, report.WarehouseRows)
	assert.Equal(t, 0, report.NewFactories)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessOrderFileUnreadable(t *testing.T) {
	p, mock := newProcessor(t)

	mock.ExpectExec("INSERT INTO etl_run_log").WillReturnResult(sqlmock.NewResult(9, 1))
	// Фатальная ошибка фиксируется в журнале
	mock.ExpectExec("UPDATE etl_run_log").WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := p.ProcessOrderFile(filepath.Join(t.TempDir(), "нет.xlsx"))

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.StagingRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
