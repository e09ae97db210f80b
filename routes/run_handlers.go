// routes/run_handlers.go
package routes

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/LilVoxy/coursework_dw/ETL/models"
)

// RunsResponse структура ответа API для журнала обработки
type RunsResponse struct {
	Runs []models.ETLRunLog `json:"runs"`
}

// ListRunsHandler обрабатывает запросы на получение журнала обработки выгрузок
func ListRunsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 || parsed > 500 {
				http.Error(w, "Некорректное значение параметра limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		repo := models.NewMySQLETLLogRepository(db)
		runs, err := repo.ListRecent(limit)
		if err != nil {
			log.Printf("Ошибка при чтении журнала обработки: %v", err)
			http.Error(w, "Не удалось прочитать журнал обработки", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(RunsResponse{Runs: runs}); err != nil {
			log.Printf("Ошибка при формировании ответа: %v", err)
		}
	}
}
