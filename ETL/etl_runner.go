package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/archive"
	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/pipeline"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
	"github.com/go-co-op/gocron"
)

// ETLRunner выполняет обработку файлов выгрузок вне HTTP-сервера:
// один файл по требованию или периодическое сканирование каталогов
type ETLRunner struct {
	config    config.ETLConfig
	db        *sql.DB
	logger    *utils.ETLLogger
	processor *pipeline.Processor
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner() (*ETLRunner, error) {
	// Получаем конфигурацию
	etlConfig := config.GetConfig()

	// Инициализируем логгер
	logger := utils.NewETLLogger(etlConfig.EnableDetailedLogging)
	logger.Info("Инициализация ETL Runner")

	// Подключаемся к базе данных хранилища
	db, err := config.ConnectWarehouse(etlConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Создаем таблицу журнала, если она еще не существует
	logRepo := models.NewMySQLETLLogRepository(db)
	if err := logRepo.CreateETLLogTable(); err != nil {
		config.CloseWarehouse(db)
		return nil, fmt.Errorf("ошибка при создании таблицы журнала ETL: %w", err)
	}

	return &ETLRunner{
		config:    etlConfig,
		db:        db,
		logger:    logger,
		processor: pipeline.NewProcessor(db, logger, etlConfig.Rules),
	}, nil
}

// Close закрывает соединение с базой данных
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	config.CloseWarehouse(r.db)
}

// ProcessFile обрабатывает один файл выгрузки указанного вида
func (r *ETLRunner) ProcessFile(path string, kind models.Kind) (*models.RunReport, error) {
	if kind == models.SalesKind {
		return r.processor.ProcessSalesFile(path)
	}
	return r.processor.ProcessOrderFile(path)
}

// ScanDropDirectories обходит каталоги загрузки и обрабатывает найденные
// файлы выгрузок последовательно. Успешно обработанные файлы сжимаются
// и переносятся в архив, файлы с фатальной ошибкой остаются на месте
func (r *ETLRunner) ScanDropDirectories() {
	for _, kind := range []models.Kind{models.OrderKind, models.SalesKind} {
		dir := filepath.Join(r.config.UploadDir, string(kind))

		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Error("Не удалось прочитать каталог %s: %v", dir, err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext != ".xlsx" && ext != ".xls" {
				continue
			}

			path := filepath.Join(dir, entry.Name())

			report, err := r.ProcessFile(path, kind)
			if err != nil {
				r.logger.Error("Файл %s не обработан: %v", path, err)
				continue
			}

			r.logger.Info("Файл %s обработан: %d строк в staging, %d строк в хранилище",
				path, report.StagingRows, report.WarehouseRows)

			archivePath, err := archive.ArchiveExtract(path, r.config.ArchiveDir)
			if err != nil {
				r.logger.Error("Не удалось архивировать файл %s: %v", path, err)
				continue
			}

			r.logger.Debug("Файл %s перенесен в архив: %s", path, archivePath)
		}
	}
}

// StartScheduler запускает планировщик для периодического сканирования каталогов
func (r *ETLRunner) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированное сканирование каталогов загрузки")
		r.ScanDropDirectories()
	})

	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
}

// RunOnce обрабатывает один файл выгрузки и печатает отчет
func RunOnce(path string, kind models.Kind) {
	runner, err := NewETLRunner()
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	defer runner.Close()

	report, err := runner.ProcessFile(path, kind)
	if err != nil {
		log.Fatalf("Ошибка при обработке файла: %v", err)
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Ошибка при формировании отчета: %v", err)
	}

	fmt.Println(string(encoded))
}

// RunScheduled запускает периодическое сканирование каталогов загрузки
func RunScheduled() {
	// Создаем контекст, который будет отменен при получении сигнала завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настраиваем обработку сигналов завершения
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	// Запускаем горутину для обработки сигналов
	go func() {
		<-signalCh
		log.Println("Получен сигнал завершения. Останавливаем ETL Runner...")
		cancel()
	}()

	runner, err := NewETLRunner()
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	defer runner.Close()

	// Запускаем планировщик
	runner.StartScheduler(ctx)
}

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "scheduled", "Режим работы: scheduled или once")
	kindPtr := flag.String("kind", "order", "Вид выгрузки: order или sales (только для режима once)")
	filePtr := flag.String("file", "", "Путь к файлу выгрузки (только для режима once)")

	flag.Parse()

	log.Println("Запуск ETL Runner в режиме:", *modePtr)

	switch *modePtr {
	case "once":
		if *filePtr == "" {
			log.Fatalln("В режиме once необходимо указать файл через -file")
		}
		kind := models.Kind(*kindPtr)
		if !kind.Valid() {
			log.Fatalln("Неизвестный вид выгрузки:", *kindPtr)
		}
		RunOnce(*filePtr, kind)
	case "scheduled":
		RunScheduled()
	default:
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: scheduled, once")
		os.Exit(1)
	}

	log.Println("ETL Runner завершил работу")
}
