package load

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

// FactLoader отвечает за идемпотентное продвижение отфильтрованных и
// скорректированных строк в fact-таблицы. При конфликте бизнес-ключа
// обновляются только изменяемые меры и import_wh_timestamp,
// остальные поля неизменны после первого продвижения
type FactLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewFactLoader создает новый экземпляр FactLoader
func NewFactLoader(db *sql.DB, logger *utils.ETLLogger) *FactLoader {
	return &FactLoader{
		db:     db,
		logger: logger,
	}
}

const orderFactInsertQuery = `
	INSERT INTO fact_order (
		order_date, order_code, ct_date, factory_code, factory_order_code,
		tax_type, department, salesman, deposit_rate, payment_registration_code,
		payment_registration_name, delivery_address, product_code, product_name,
		qc, warehouse_type, order_quantity, delivered_quantity,
		package_order_quantity, delivered_package_order_quantity, unit, package_unit,
		estimated_delivery_date, original_estimated_delivery_date, pre_ct,
		finish_code, import_timestamp, import_wh_timestamp
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?
	)
	ON DUPLICATE KEY UPDATE
		order_quantity = VALUES(order_quantity),
		delivered_quantity = VALUES(delivered_quantity),
		import_wh_timestamp = VALUES(import_wh_timestamp)
`

// PromoteOrders продвигает строки заказов в fact_order.
// Момент продвижения проставляется во все строки единообразно.
// Возвращает количество продвинутых строк (вставки и обновления)
// и список ошибок уровня строки
func (l *FactLoader) PromoteOrders(rows []models.OrderFactRow) (int, []string, error) {
	if len(rows) == 0 {
		l.logger.Debug("Нет строк заказов для продвижения в хранилище")
		return 0, nil, nil
	}

	startTime := time.Now()
	l.logger.Info("Начало продвижения заказов в хранилище (всего: %d)", len(rows))

	tx, err := l.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	stmt, err := tx.Prepare(orderFactInsertQuery)
	if err != nil {
		tx.Rollback()
		return 0, nil, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	promotedAt := time.Now()
	promoted := 0
	var rowErrors []string

	for _, row := range rows {
		_, err := stmt.Exec(
			row.OrderDate,
			row.OrderCode,
			row.CTDate,
			row.FactoryCode,
			row.FactoryOrderCode,
			row.TaxType,
			row.Department,
			row.Salesman,
			row.DepositRate,
			row.PaymentRegistrationCode,
			row.PaymentRegistrationName,
			row.DeliveryAddress,
			row.ProductCode,
			row.ProductName,
			row.QC,
			row.WarehouseType,
			row.OrderQuantity,
			row.DeliveredQuantity,
			row.PackageOrderQuantity,
			row.DeliveredPackageOrderQuantity,
			row.Unit,
			row.PackageUnit,
			row.EstimatedDeliveryDate,
			row.OriginalEstimatedDeliveryDate,
			row.PreCT,
			row.FinishCode,
			row.ImportTimestamp,
			promotedAt,
		)
		if err != nil {
			// Ошибка одной строки не прерывает продвижение остальных
			l.logger.Error("Ошибка при продвижении заказа %s в хранилище: %v", row.OrderCode, err)
			rowErrors = append(rowErrors, fmt.Sprintf("Warehouse insert error for %s: %v", row.OrderCode, err))
			continue
		}

		promoted++
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, rowErrors, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.LogPromotionComplete(promoted, time.Since(startTime))
	return promoted, rowErrors, nil
}

const salesFactInsertQuery = `
	INSERT INTO fact_sales (
		product_code, product_name, qc, factory_code,
		sales_date, sales_code, order_code, sales_quantity,
		unit, package_sales_quantity, package_unit,
		department, salesman, warehouse_code, warehouse_type,
		import_code, factory_order_code, import_timestamp, import_wh_timestamp
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?
	)
	ON DUPLICATE KEY UPDATE
		sales_quantity = VALUES(sales_quantity),
		import_wh_timestamp = VALUES(import_wh_timestamp)
`

// PromoteSales продвигает строки продаж в fact_sales
func (l *FactLoader) PromoteSales(rows []models.SalesFactRow) (int, []string, error) {
	if len(rows) == 0 {
		l.logger.Debug("Нет строк продаж для продвижения в хранилище")
		return 0, nil, nil
	}

	startTime := time.Now()
	l.logger.Info("Начало продвижения продаж в хранилище (всего: %d)", len(rows))

	tx, err := l.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	stmt, err := tx.Prepare(salesFactInsertQuery)
	if err != nil {
		tx.Rollback()
		return 0, nil, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	promotedAt := time.Now()
	promoted := 0
	var rowErrors []string

	for _, row := range rows {
		_, err := stmt.Exec(
			row.ProductCode,
			row.ProductName,
			row.QC,
			row.FactoryCode,
			row.SalesDate,
			row.SalesCode,
			row.OrderCode,
			row.SalesQuantity,
			row.Unit,
			row.PackageSalesQuantity,
			row.PackageUnit,
			row.Department,
			row.Salesman,
			row.WarehouseCode,
			row.WarehouseType,
			row.ImportCode,
			row.FactoryOrderCode,
			row.ImportTimestamp,
			promotedAt,
		)
		if err != nil {
			l.logger.Error("Ошибка при продвижении продажи %s в хранилище: %v", row.SalesCode, err)
			rowErrors = append(rowErrors, fmt.Sprintf("Warehouse insert error for %s: %v", row.SalesCode, err))
			continue
		}

		promoted++
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, rowErrors, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.LogPromotionComplete(promoted, time.Since(startTime))
	return promoted, rowErrors, nil
}
