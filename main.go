// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/pipeline"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
	"github.com/LilVoxy/coursework_dw/database"
	"github.com/LilVoxy/coursework_dw/routes"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
)

func main() {
	fmt.Println("Запуск сервера загрузки витрины...")

	// Получаем конфигурацию
	cfg := config.GetConfig()

	// Подключение к базе данных хранилища
	db, err := database.Connect(cfg.WarehouseConfig)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к базе данных: %v", err)
	}
	defer db.Close()

	// Создаем таблицы хранилища, если они еще не существуют
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("❌ Не удалось создать схему хранилища: %v", err)
	}

	// Создаем таблицу журнала обработки
	logRepo := models.NewMySQLETLLogRepository(db)
	if err := logRepo.CreateETLLogTable(); err != nil {
		log.Fatalf("❌ Не удалось создать таблицу журнала ETL: %v", err)
	}

	// Инициализируем логгер и процессор ETL
	logger := utils.NewETLLogger(cfg.EnableDetailedLogging)
	processor := pipeline.NewProcessor(db, logger, cfg.Rules)

	// Создаем маршрутизатор
	router := mux.NewRouter()
	routes.SetupRoutes(router, db, processor, cfg)

	port := os.Getenv("DW_PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Printf("Сервер запущен на порту %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Ошибка сервера: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	<-signalCh

	log.Println("Получен сигнал завершения. Останавливаем сервер...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Ошибка при остановке сервера: %v", err)
	}

	log.Println("Сервер остановлен")
}
