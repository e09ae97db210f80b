package load

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

// StagingLoader отвечает за идемпотентную загрузку нормализованных
// записей в staging-таблицы. Ошибка вставки одной записи изолируется:
// она логируется и учитывается, остальные записи пакета обрабатываются.
// Записи проходят полную нормализацию до выполнения запросов, поэтому
// ошибки на этом этапе — это неожиданные сбои движка
type StagingLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewStagingLoader создает новый экземпляр StagingLoader
func NewStagingLoader(db *sql.DB, logger *utils.ETLLogger) *StagingLoader {
	return &StagingLoader{
		db:     db,
		logger: logger,
	}
}

// Конфликт бизнес-ключа заказа обновляет изменяемые меры и
// отметку импорта, остальные поля сохраняются
const orderStagingInsertQuery = `
	INSERT INTO copr13 (
		order_date, ct_date, original_estimated_delivery_date, estimated_delivery_date,
		order_code, factory_code, factory_name, product_code,
		product_name, qc, order_quantity, delivered_quantity,
		factory_order_code, note, numerical_order, warehouse_type,
		tax_type, department, salesman, deposit_rate,
		payment_registration_code, payment_registration_name, delivery_address,
		package_order_quantity, delivered_package_order_quantity, unit,
		package_unit, pre_ct, finish_code, import_timestamp
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?
	)
	ON DUPLICATE KEY UPDATE
		order_quantity = VALUES(order_quantity),
		delivered_quantity = VALUES(delivered_quantity),
		import_timestamp = VALUES(import_timestamp)
`

// LoadOrders загружает записи заказов в staging-таблицу copr13.
// Возвращает количество успешно записанных строк, количество конфликтов
// бизнес-ключа и список ошибок уровня строки
func (l *StagingLoader) LoadOrders(records []models.OrderStagingRecord) (int, int, []string, error) {
	if len(records) == 0 {
		l.logger.Debug("Нет записей заказов для загрузки в staging")
		return 0, 0, nil, nil
	}

	startTime := time.Now()
	l.logger.Info("Начало загрузки заказов в staging (всего: %d)", len(records))

	// Начинаем транзакцию
	tx, err := l.db.Begin()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	stmt, err := tx.Prepare(orderStagingInsertQuery)
	if err != nil {
		tx.Rollback()
		return 0, 0, nil, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	conflicts := 0
	var rowErrors []string

	for _, record := range records {
		result, err := stmt.Exec(
			record.OrderDate,
			record.CTDate,
			record.OriginalEstimatedDeliveryDate,
			record.EstimatedDeliveryDate,
			record.OrderCode,
			record.FactoryCode,
			record.FactoryName,
			record.ProductCode,
			record.ProductName,
			record.QC,
			record.OrderQuantity,
			record.DeliveredQuantity,
			record.FactoryOrderCode,
			record.Note,
			record.NumericalOrder,
			record.WarehouseType,
			record.TaxType,
			record.Department,
			record.Salesman,
			record.DepositRate,
			record.PaymentRegistrationCode,
			record.PaymentRegistrationName,
			record.DeliveryAddress,
			record.PackageOrderQuantity,
			record.DeliveredPackageOrderQuantity,
			record.Unit,
			record.PackageUnit,
			record.PreCT,
			record.FinishCode,
			record.ImportTimestamp,
		)
		if err != nil {
			// Ошибка одной записи не прерывает загрузку остальных
			l.logger.Error("Ошибка при вставке заказа %s в staging: %v", record.OrderCode, err)
			rowErrors = append(rowErrors, fmt.Sprintf("Staging insert error for %s: %v", record.OrderCode, err))
			continue
		}

		// RowsAffected: 1 — вставка, 2 или 0 — конфликт с обновлением мер
		affected, _ := result.RowsAffected()
		if affected == 1 {
			inserted++
		} else {
			conflicts++
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, 0, rowErrors, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.LogStagingComplete(inserted, conflicts, time.Since(startTime))
	return inserted, conflicts, rowErrors, nil
}

// Для продаж первая запись с данным бизнес-ключом остается в staging
// без изменений, повторы игнорируются
const salesStagingInsertQuery = `
	INSERT IGNORE INTO copr23 (
		product_code, product_name, qc, factory_code, factory_name,
		sales_date, ct_date, sales_code, order_code, sales_quantity,
		gift_quantity, unit, small_unit, package_sales_quantity,
		package_gift_quantity, package_unit, department, salesman,
		export_factory, warehouse_code, warehouse_type, import_code,
		note, factory_order_code, numerical_order, import_timestamp
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?, ?
	)
`

// LoadSales загружает записи продаж в staging-таблицу copr23
func (l *StagingLoader) LoadSales(records []models.SalesStagingRecord) (int, int, []string, error) {
	if len(records) == 0 {
		l.logger.Debug("Нет записей продаж для загрузки в staging")
		return 0, 0, nil, nil
	}

	startTime := time.Now()
	l.logger.Info("Начало загрузки продаж в staging (всего: %d)", len(records))

	tx, err := l.db.Begin()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	stmt, err := tx.Prepare(salesStagingInsertQuery)
	if err != nil {
		tx.Rollback()
		return 0, 0, nil, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	conflicts := 0
	var rowErrors []string

	for _, record := range records {
		result, err := stmt.Exec(
			record.ProductCode,
			record.ProductName,
			record.QC,
			record.FactoryCode,
			record.FactoryName,
			record.SalesDate,
			record.CTDate,
			record.SalesCode,
			record.OrderCode,
			record.SalesQuantity,
			record.GiftQuantity,
			record.Unit,
			record.SmallUnit,
			record.PackageSalesQuantity,
			record.PackageGiftQuantity,
			record.PackageUnit,
			record.Department,
			record.Salesman,
			record.ExportFactory,
			record.WarehouseCode,
			record.WarehouseType,
			record.ImportCode,
			record.Note,
			record.FactoryOrderCode,
			record.NumericalOrder,
			record.ImportTimestamp,
		)
		if err != nil {
			l.logger.Error("Ошибка при вставке продажи %s в staging: %v", record.SalesCode, err)
			rowErrors = append(rowErrors, fmt.Sprintf("Staging insert error for %s: %v", record.SalesCode, err))
			continue
		}

		// RowsAffected: 1 — вставка, 0 — повтор бизнес-ключа, строка проигнорирована
		affected, _ := result.RowsAffected()
		if affected == 1 {
			inserted++
		} else {
			conflicts++
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, 0, rowErrors, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.LogStagingComplete(inserted, conflicts, time.Since(startTime))
	return inserted, conflicts, rowErrors, nil
}
