package models

import (
	"time"
)

// RunReport содержит агрегированный результат обработки одного файла выгрузки
type RunReport struct {
	FileName   string    `json:"file_name"`
	Kind       Kind      `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Количество строк, успешно записанных в staging-таблицу
	StagingRows int `json:"staging_rows"`

	// Количество строк, продвинутых в fact-таблицу (вставки и обновления)
	WarehouseRows int `json:"warehouse_rows"`

	// Количество конфликтов бизнес-ключа при загрузке в staging
	Conflicts int `json:"conflicts"`

	// Количество строк выгрузки, отброшенных при нормализации
	SkippedRows int `json:"skipped_rows"`

	// Количество новых записей в измерениях
	NewFactories int `json:"new_factories"`
	NewProducts  int `json:"new_products"`

	// Ошибки уровня строки, накопленные за время обработки.
	// Они не прерывают обработку и не считаются фатальными
	Errors []string `json:"errors"`
}

// AddErrors добавляет накопленные ошибки уровня строки в отчет
func (r *RunReport) AddErrors(errs []string) {
	r.Errors = append(r.Errors, errs...)
}
