package transform

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

// Сентинел для пустой fact-таблицы: далекое прошлое
var watermarkEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// WatermarkSelector определяет водяную отметку fact-таблицы и выбирает
// staging-строки строго новее нее. Отметка пересчитывается на каждом
// запуске из состояния таблицы, состояние запусков не хранится
type WatermarkSelector struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewWatermarkSelector создает новый экземпляр WatermarkSelector
func NewWatermarkSelector(db *sql.DB, logger *utils.ETLLogger) *WatermarkSelector {
	return &WatermarkSelector{
		db:     db,
		logger: logger,
	}
}

// Фиксированные варианты запроса водяной отметки для каждого вида.
// Колонки и таблицы не подставляются из внешних строк
const (
	orderWatermarkQuery = `SELECT MAX(import_timestamp) FROM fact_order`
	salesWatermarkQuery = `SELECT MAX(import_timestamp) FROM fact_sales`
)

// LatestImport возвращает максимальный import_timestamp fact-таблицы.
// Для пустой таблицы возвращается сентинел далекого прошлого
func (s *WatermarkSelector) LatestImport(kind models.Kind) (time.Time, error) {
	query := orderWatermarkQuery
	if kind == models.SalesKind {
		query = salesWatermarkQuery
	}

	var latest sql.NullTime
	if err := s.db.QueryRow(query).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("ошибка при определении водяной отметки %s: %w", kind.FactTable(), err)
	}

	if !latest.Valid {
		s.logger.Debug("Таблица %s пуста, используется начальная отметка %v", kind.FactTable(), watermarkEpoch)
		return watermarkEpoch, nil
	}

	return latest.Time, nil
}

const selectNewOrdersQuery = `
	SELECT
		order_date, order_code, ct_date, factory_code, factory_order_code,
		tax_type, department, salesman, deposit_rate, payment_registration_code,
		payment_registration_name, delivery_address, product_code, product_name,
		qc, warehouse_type, order_quantity, delivered_quantity,
		package_order_quantity, delivered_package_order_quantity, unit, package_unit,
		estimated_delivery_date, original_estimated_delivery_date, pre_ct,
		finish_code, import_timestamp
	FROM copr13
	WHERE import_timestamp > ?
`

// SelectNewOrders выбирает staging-строки заказов новее водяной отметки
func (s *WatermarkSelector) SelectNewOrders(watermark time.Time) ([]models.OrderFactRow, error) {
	rows, err := s.db.Query(selectNewOrdersQuery, watermark)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выборке новых строк из copr13: %w", err)
	}
	defer rows.Close()

	var result []models.OrderFactRow
	for rows.Next() {
		var r models.OrderFactRow
		var (
			orderDate, ctDate, estDelivery, origEstDelivery             sql.NullTime
			factoryCode, factoryOrderCode, taxType, department          sql.NullString
			salesman, depositRate, payRegCode, payRegName, deliveryAddr sql.NullString
			productCode, productName, qc, warehouseType                 sql.NullString
			unit, packageUnit, preCT, finishCode                        sql.NullString
			orderQty, deliveredQty, pkgOrderQty, deliveredPkgOrderQty   sql.NullFloat64
		)

		if err := rows.Scan(
			&orderDate, &r.OrderCode, &ctDate, &factoryCode, &factoryOrderCode,
			&taxType, &department, &salesman, &depositRate, &payRegCode,
			&payRegName, &deliveryAddr, &productCode, &productName,
			&qc, &warehouseType, &orderQty, &deliveredQty,
			&pkgOrderQty, &deliveredPkgOrderQty, &unit, &packageUnit,
			&estDelivery, &origEstDelivery, &preCT,
			&finishCode, &r.ImportTimestamp,
		); err != nil {
			return nil, fmt.Errorf("ошибка при обработке staging-строки заказа: %w", err)
		}

		r.OrderDate = timePtr(orderDate)
		r.CTDate = timePtr(ctDate)
		r.FactoryCode = strPtr(factoryCode)
		r.FactoryOrderCode = strPtr(factoryOrderCode)
		r.TaxType = strPtr(taxType)
		r.Department = strPtr(department)
		r.Salesman = strPtr(salesman)
		r.DepositRate = strPtr(depositRate)
		r.PaymentRegistrationCode = strPtr(payRegCode)
		r.PaymentRegistrationName = strPtr(payRegName)
		r.DeliveryAddress = strPtr(deliveryAddr)
		r.ProductCode = strPtr(productCode)
		r.ProductName = strPtr(productName)
		r.QC = strPtr(qc)
		r.WarehouseType = strPtr(warehouseType)
		r.OrderQuantity = floatPtr(orderQty)
		r.DeliveredQuantity = floatPtr(deliveredQty)
		r.PackageOrderQuantity = floatPtr(pkgOrderQty)
		r.DeliveredPackageOrderQuantity = floatPtr(deliveredPkgOrderQty)
		r.Unit = strPtr(unit)
		r.PackageUnit = strPtr(packageUnit)
		r.EstimatedDeliveryDate = timePtr(estDelivery)
		r.OriginalEstimatedDeliveryDate = timePtr(origEstDelivery)
		r.PreCT = strPtr(preCT)
		r.FinishCode = strPtr(finishCode)

		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по staging-строкам заказов: %w", err)
	}

	return result, nil
}

const selectNewSalesQuery = `
	SELECT
		product_code, product_name, qc, factory_code,
		sales_date, sales_code, order_code, sales_quantity,
		unit, package_sales_quantity, package_unit,
		department, salesman, warehouse_code, warehouse_type,
		import_code, factory_order_code, import_timestamp
	FROM copr23
	WHERE import_timestamp > ?
`

// SelectNewSales выбирает staging-строки продаж новее водяной отметки
func (s *WatermarkSelector) SelectNewSales(watermark time.Time) ([]models.SalesFactRow, error) {
	rows, err := s.db.Query(selectNewSalesQuery, watermark)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выборке новых строк из copr23: %w", err)
	}
	defer rows.Close()

	var result []models.SalesFactRow
	for rows.Next() {
		var r models.SalesFactRow
		var (
			salesDate                                          sql.NullTime
			productCode, productName, qc, factoryCode          sql.NullString
			orderCode, unit, packageUnit, department, salesman sql.NullString
			warehouseCode, warehouseType, importCode           sql.NullString
			factoryOrderCode                                   sql.NullString
			salesQty, pkgSalesQty                              sql.NullFloat64
		)

		if err := rows.Scan(
			&productCode, &productName, &qc, &factoryCode,
			&salesDate, &r.SalesCode, &orderCode, &salesQty,
			&unit, &pkgSalesQty, &packageUnit,
			&department, &salesman, &warehouseCode, &warehouseType,
			&importCode, &factoryOrderCode, &r.ImportTimestamp,
		); err != nil {
			return nil, fmt.Errorf("ошибка при обработке staging-строки продажи: %w", err)
		}

		r.ProductCode = strPtr(productCode)
		r.ProductName = strPtr(productName)
		r.QC = strPtr(qc)
		r.FactoryCode = strPtr(factoryCode)
		r.SalesDate = timePtr(salesDate)
		r.OrderCode = strPtr(orderCode)
		r.SalesQuantity = floatPtr(salesQty)
		r.Unit = strPtr(unit)
		r.PackageSalesQuantity = floatPtr(pkgSalesQty)
		r.PackageUnit = strPtr(packageUnit)
		r.Department = strPtr(department)
		r.Salesman = strPtr(salesman)
		r.WarehouseCode = strPtr(warehouseCode)
		r.WarehouseType = strPtr(warehouseType)
		r.ImportCode = strPtr(importCode)
		r.FactoryOrderCode = strPtr(factoryOrderCode)

		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по staging-строкам продаж: %w", err)
	}

	return result, nil
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
