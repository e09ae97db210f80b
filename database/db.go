// database/db.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	_ "github.com/go-sql-driver/mysql"
)

// Connect устанавливает подключение к базе данных хранилища.
// Подключение передается компонентам явно, глобального состояния нет
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных: %w", err)
	}

	return db, nil
}

// Контракт реляционного хранилища: staging-таблицы с уникальным
// бизнес-ключом, fact-таблицы с отметками импорта и продвижения,
// измерения с натуральным кодом в качестве первичного ключа
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS copr13 (
		order_code VARCHAR(64) PRIMARY KEY,
		order_date DATETIME NULL,
		ct_date DATETIME NULL,
		original_estimated_delivery_date DATETIME NULL,
		estimated_delivery_date DATETIME NULL,
		factory_code VARCHAR(64) NULL,
		factory_name VARCHAR(255) NULL,
		product_code VARCHAR(64) NULL,
		product_name VARCHAR(255) NULL,
		qc VARCHAR(64) NULL,
		order_quantity DOUBLE NULL,
		delivered_quantity DOUBLE NULL,
		factory_order_code VARCHAR(64) NULL,
		note TEXT NULL,
		numerical_order VARCHAR(8) NOT NULL,
		warehouse_type VARCHAR(64) NULL,
		tax_type VARCHAR(64) NULL,
		department VARCHAR(64) NULL,
		salesman VARCHAR(64) NULL,
		deposit_rate VARCHAR(64) NULL,
		payment_registration_code VARCHAR(64) NULL,
		payment_registration_name VARCHAR(255) NULL,
		delivery_address VARCHAR(255) NULL,
		package_order_quantity DOUBLE NULL,
		delivered_package_order_quantity DOUBLE NULL,
		unit VARCHAR(32) NULL,
		package_unit VARCHAR(32) NULL,
		pre_ct VARCHAR(64) NULL,
		finish_code VARCHAR(64) NULL,
		import_timestamp DATETIME NOT NULL,
		INDEX idx_copr13_import_timestamp (import_timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS copr23 (
		sales_code VARCHAR(64) PRIMARY KEY,
		product_code VARCHAR(64) NULL,
		product_name VARCHAR(255) NULL,
		qc VARCHAR(64) NULL,
		factory_code VARCHAR(64) NULL,
		factory_name VARCHAR(255) NULL,
		sales_date DATETIME NULL,
		ct_date DATETIME NULL,
		order_code VARCHAR(64) NULL,
		sales_quantity DOUBLE NULL,
		gift_quantity DOUBLE NULL,
		unit VARCHAR(32) NULL,
		small_unit VARCHAR(32) NULL,
		package_sales_quantity DOUBLE NULL,
		package_gift_quantity DOUBLE NULL,
		package_unit VARCHAR(32) NULL,
		department VARCHAR(64) NULL,
		salesman VARCHAR(64) NULL,
		export_factory VARCHAR(64) NULL,
		warehouse_code VARCHAR(64) NULL,
		warehouse_type VARCHAR(64) NULL,
		import_code VARCHAR(64) NULL,
		note TEXT NULL,
		factory_order_code VARCHAR(64) NULL,
		numerical_order VARCHAR(8) NOT NULL,
		import_timestamp DATETIME NOT NULL,
		INDEX idx_copr23_import_timestamp (import_timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS fact_order (
		order_code VARCHAR(64) PRIMARY KEY,
		order_date DATETIME NULL,
		ct_date DATETIME NULL,
		factory_code VARCHAR(64) NULL,
		factory_order_code VARCHAR(64) NULL,
		tax_type VARCHAR(64) NULL,
		department VARCHAR(64) NULL,
		salesman VARCHAR(64) NULL,
		deposit_rate VARCHAR(64) NULL,
		payment_registration_code VARCHAR(64) NULL,
		payment_registration_name VARCHAR(255) NULL,
		delivery_address VARCHAR(255) NULL,
		product_code VARCHAR(64) NULL,
		product_name VARCHAR(255) NULL,
		qc VARCHAR(64) NULL,
		warehouse_type VARCHAR(64) NULL,
		order_quantity DOUBLE NULL,
		delivered_quantity DOUBLE NULL,
		package_order_quantity DOUBLE NULL,
		delivered_package_order_quantity DOUBLE NULL,
		unit VARCHAR(32) NULL,
		package_unit VARCHAR(32) NULL,
		estimated_delivery_date DATETIME NULL,
		original_estimated_delivery_date DATETIME NULL,
		pre_ct VARCHAR(64) NULL,
		finish_code VARCHAR(64) NULL,
		import_timestamp DATETIME NOT NULL,
		import_wh_timestamp DATETIME NOT NULL,
		INDEX idx_fact_order_import_timestamp (import_timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS fact_sales (
		sales_code VARCHAR(64) PRIMARY KEY,
		product_code VARCHAR(64) NULL,
		product_name VARCHAR(255) NULL,
		qc VARCHAR(64) NULL,
		factory_code VARCHAR(64) NULL,
		sales_date DATETIME NULL,
		order_code VARCHAR(64) NULL,
		sales_quantity DOUBLE NULL,
		unit VARCHAR(32) NULL,
		package_sales_quantity DOUBLE NULL,
		package_unit VARCHAR(32) NULL,
		department VARCHAR(64) NULL,
		salesman VARCHAR(64) NULL,
		warehouse_code VARCHAR(64) NULL,
		warehouse_type VARCHAR(64) NULL,
		import_code VARCHAR(64) NULL,
		factory_order_code VARCHAR(64) NULL,
		import_timestamp DATETIME NOT NULL,
		import_wh_timestamp DATETIME NOT NULL,
		INDEX idx_fact_sales_import_timestamp (import_timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS dim_factory (
		factory_code VARCHAR(64) PRIMARY KEY,
		factory_name VARCHAR(255) NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		has_onsite BOOLEAN NOT NULL DEFAULT FALSE,
		salesman VARCHAR(64) NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dim_product (
		product_code VARCHAR(64) PRIMARY KEY,
		product_name VARCHAR(255) NULL,
		qc VARCHAR(64) NULL
	)`,
}

// EnsureSchema создает таблицы хранилища, если они еще не существуют
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка при создании схемы хранилища: %w", err)
		}
	}

	return nil
}
