package models

import (
	"database/sql"
	"fmt"
	"time"
)

// MySQLETLLogRepository реализация ETLLogRepository для MySQL
type MySQLETLLogRepository struct {
	db *sql.DB
}

// NewMySQLETLLogRepository создает новый экземпляр MySQLETLLogRepository
func NewMySQLETLLogRepository(db *sql.DB) *MySQLETLLogRepository {
	return &MySQLETLLogRepository{
		db: db,
	}
}

// CreateETLLogTable создает таблицу для журнала обработки выгрузок, если она не существует
func (r *MySQLETLLogRepository) CreateETLLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		id INT AUTO_INCREMENT PRIMARY KEY,
		file_name VARCHAR(255) NOT NULL,
		kind ENUM('order', 'sales') NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status ENUM('success', 'failed', 'in_progress') NOT NULL DEFAULT 'in_progress',
		staging_rows INT DEFAULT 0,
		warehouse_rows INT DEFAULT 0,
		conflicts INT DEFAULT 0,
		error_count INT DEFAULT 0,
		error_message TEXT
	);
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о начале обработки файла
func (r *MySQLETLLogRepository) CreateLogEntry(fileName string, kind Kind, startTime time.Time) (int, error) {
	query := `
	INSERT INTO etl_run_log (file_name, kind, start_time, status)
	VALUES (?, ?, ?, 'in_progress')
	`

	result, err := r.db.Exec(query, fileName, string(kind), startTime)
	if err != nil {
		return 0, fmt.Errorf("ошибка при создании записи журнала ETL: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении ID созданной записи: %w", err)
	}

	return int(id), nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении обработки
func (r *MySQLETLLogRepository) UpdateLogEntrySuccess(
	id int,
	endTime time.Time,
	stagingRows,
	warehouseRows,
	conflicts,
	errorCount int) error {

	query := `
	UPDATE etl_run_log
	SET end_time = ?,
		status = 'success',
		staging_rows = ?,
		warehouse_rows = ?,
		conflicts = ?,
		error_count = ?
	WHERE id = ?
	`

	_, err := r.db.Exec(query, endTime, stagingRows, warehouseRows, conflicts, errorCount, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи журнала ETL: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure обновляет запись при фатальной ошибке обработки
func (r *MySQLETLLogRepository) UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error {
	query := `
	UPDATE etl_run_log
	SET end_time = ?,
		status = 'failed',
		error_message = ?
	WHERE id = ?
	`

	_, err := r.db.Exec(query, endTime, errorMessage, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи журнала ETL: %w", err)
	}

	return nil
}

// ListRecent возвращает последние записи журнала обработки выгрузок
func (r *MySQLETLLogRepository) ListRecent(limit int) ([]ETLRunLog, error) {
	query := `
	SELECT id, file_name, kind, start_time,
		COALESCE(end_time, start_time),
		status, staging_rows, warehouse_rows, conflicts, error_count,
		COALESCE(error_message, '')
	FROM etl_run_log
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении журнала ETL: %w", err)
	}
	defer rows.Close()

	var entries []ETLRunLog
	for rows.Next() {
		var entry ETLRunLog
		var kind string
		if err := rows.Scan(
			&entry.ID,
			&entry.FileName,
			&kind,
			&entry.StartTime,
			&entry.EndTime,
			&entry.Status,
			&entry.StagingRows,
			&entry.WarehouseRows,
			&entry.Conflicts,
			&entry.ErrorCount,
			&entry.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("ошибка при обработке записи журнала ETL: %w", err)
		}
		entry.Kind = Kind(kind)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по журналу ETL: %w", err)
	}

	return entries, nil
}
