package load

import (
	"database/sql"
	"fmt"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

// DimensionLoader отвечает за сверку измерений с текущим содержимым
// staging-таблиц: новые коды добавляются, существующие записи измерений
// никогда не перезаписываются этим путем (первая запись побеждает)
type DimensionLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewDimensionLoader создает новый экземпляр DimensionLoader
func NewDimensionLoader(db *sql.DB, logger *utils.ETLLogger) *DimensionLoader {
	return &DimensionLoader{
		db:     db,
		logger: logger,
	}
}

// Для каждого кода берется строка staging с самой поздней датой
// (NULL-даты в конце), артефакты плавающей точки в коде очищаются.
// INSERT IGNORE не трогает уже существующие записи измерения
const (
	factoryDimFromOrdersQuery = `
		INSERT IGNORE INTO dim_factory (factory_code, factory_name, is_active, has_onsite, salesman)
		SELECT TRIM(TRAILING '.0' FROM t.factory_code), t.factory_name, TRUE, FALSE, t.salesman
		FROM (
			SELECT factory_code, factory_name, salesman,
				ROW_NUMBER() OVER (
					PARTITION BY factory_code
					ORDER BY order_date IS NULL, order_date DESC
				) AS rn
			FROM copr13
			WHERE factory_code IS NOT NULL
		) t
		WHERE t.rn = 1
	`

	factoryDimFromSalesQuery = `
		INSERT IGNORE INTO dim_factory (factory_code, factory_name, is_active, has_onsite, salesman)
		SELECT TRIM(TRAILING '.0' FROM t.factory_code), t.factory_name, TRUE, FALSE, t.salesman
		FROM (
			SELECT factory_code, factory_name, salesman,
				ROW_NUMBER() OVER (
					PARTITION BY factory_code
					ORDER BY sales_date IS NULL, sales_date DESC
				) AS rn
			FROM copr23
			WHERE factory_code IS NOT NULL
		) t
		WHERE t.rn = 1
	`

	productDimFromOrdersQuery = `
		INSERT IGNORE INTO dim_product (product_code, product_name, qc)
		SELECT TRIM(TRAILING '.0' FROM t.product_code), t.product_name, t.qc
		FROM (
			SELECT product_code, product_name, qc,
				ROW_NUMBER() OVER (
					PARTITION BY product_code
					ORDER BY order_date IS NULL, order_date DESC
				) AS rn
			FROM copr13
			WHERE product_code IS NOT NULL
		) t
		WHERE t.rn = 1
	`

	productDimFromSalesQuery = `
		INSERT IGNORE INTO dim_product (product_code, product_name, qc)
		SELECT TRIM(TRAILING '.0' FROM t.product_code), t.product_name, t.qc
		FROM (
			SELECT product_code, product_name, qc,
				ROW_NUMBER() OVER (
					PARTITION BY product_code
					ORDER BY sales_date IS NULL, sales_date DESC
				) AS rn
			FROM copr23
			WHERE product_code IS NOT NULL
		) t
		WHERE t.rn = 1
	`
)

// ReconcileFactories добавляет в dim_factory коды фабрик, наблюдаемые
// в staging-таблице данного вида, но еще отсутствующие в измерении.
// Возвращает количество добавленных записей
func (l *DimensionLoader) ReconcileFactories(kind models.Kind) (int, error) {
	query := factoryDimFromOrdersQuery
	if kind == models.SalesKind {
		query = factoryDimFromSalesQuery
	}

	result, err := l.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("ошибка при сверке измерения фабрик: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении количества добавленных фабрик: %w", err)
	}

	l.logger.Info("Измерение фабрик обновлено: %d новых записей", affected)
	return int(affected), nil
}

// ReconcileProducts добавляет в dim_product коды продуктов, наблюдаемые
// в staging-таблице данного вида, но еще отсутствующие в измерении
func (l *DimensionLoader) ReconcileProducts(kind models.Kind) (int, error) {
	query := productDimFromOrdersQuery
	if kind == models.SalesKind {
		query = productDimFromSalesQuery
	}

	result, err := l.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("ошибка при сверке измерения продуктов: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении количества добавленных продуктов: %w", err)
	}

	l.logger.Info("Измерение продуктов обновлено: %d новых записей", affected)
	return int(affected), nil
}
