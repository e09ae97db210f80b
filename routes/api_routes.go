// routes/api_routes.go
package routes

import (
	"database/sql"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/pipeline"
	"github.com/LilVoxy/coursework_dw/middleware"
	"github.com/gorilla/mux"
)

// SetupRoutes настраивает все маршруты API загрузки выгрузок
func SetupRoutes(router *mux.Router, db *sql.DB, processor *pipeline.Processor, cfg config.ETLConfig) {
	// Применяем CORS middleware
	router.Use(middleware.CORSMiddleware)

	// API загрузки файлов выгрузок
	router.HandleFunc("/api/etl/upload/order", UploadOrderHandler(processor, cfg)).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/etl/upload/sales", UploadSalesHandler(processor, cfg)).Methods("POST", "OPTIONS")

	// API журнала обработки
	router.HandleFunc("/api/etl/runs", ListRunsHandler(db)).Methods("GET", "OPTIONS")
}
