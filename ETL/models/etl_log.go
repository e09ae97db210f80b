package models

import (
	"time"
)

// ETLRunLog представляет запись журнала обработки файлов выгрузок
type ETLRunLog struct {
	ID            int       `json:"id"`
	FileName      string    `json:"file_name"`
	Kind          Kind      `json:"kind"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"` // 'success', 'failed', 'in_progress'
	StagingRows   int       `json:"staging_rows"`
	WarehouseRows int       `json:"warehouse_rows"`
	Conflicts     int       `json:"conflicts"`
	ErrorCount    int       `json:"error_count"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// ETLLogRepository определяет интерфейс для работы с журналом запусков ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если она не существует
	CreateETLLogTable() error

	// CreateLogEntry создает запись о начале обработки файла
	CreateLogEntry(fileName string, kind Kind, startTime time.Time) (int, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении
	UpdateLogEntrySuccess(id int, endTime time.Time, stagingRows, warehouseRows, conflicts, errorCount int) error

	// UpdateLogEntryFailure обновляет запись при фатальной ошибке
	UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error

	// ListRecent возвращает последние записи журнала
	ListRecent(limit int) ([]ETLRunLog, error)
}
