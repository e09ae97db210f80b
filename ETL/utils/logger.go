package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// ETLLogger представляет логгер для ETL-процесса загрузки витрины
type ETLLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
	isQuiet     bool
}

// NewETLLogger создает новый экземпляр логгера для ETL
func NewETLLogger(verbose bool) *ETLLogger {
	// Создаем или открываем лог-файл для записи
	currentTime := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("dw_etl_log_%s.log", currentTime)

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Не удалось открыть или создать файл лога: %v", err)
	}

	// Инициализируем логгеры для разных уровней
	infoLogger := log.New(file, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger := log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger := log.New(file, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)

	return &ETLLogger{
		infoLogger:  infoLogger,
		errorLogger: errorLogger,
		debugLogger: debugLogger,
		isVerbose:   verbose,
	}
}

// NewNopLogger создает логгер, отбрасывающий все сообщения.
// Используется в тестах
func NewNopLogger() *ETLLogger {
	discard := log.New(io.Discard, "", 0)
	return &ETLLogger{
		infoLogger:  discard,
		errorLogger: discard,
		debugLogger: discard,
		isVerbose:   false,
		isQuiet:     true,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Println(msg)

	// Также выводим в стандартный вывод
	if !l.isQuiet {
		log.Println("INFO:", msg)
	}
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Println(msg)

	// Также выводим в стандартный вывод
	if !l.isQuiet {
		log.Println("ERROR:", msg)
	}
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Println(msg)

	// Также выводим в стандартный вывод
	if !l.isQuiet {
		log.Println("DEBUG:", msg)
	}
}

// LogRunStart логирует начало обработки файла выгрузки
func (l *ETLLogger) LogRunStart(kind string, fileName string) {
	l.Info("Начало обработки файла выгрузки (%s): %s", kind, fileName)
}

// LogStagingComplete логирует завершение загрузки в staging-таблицу
func (l *ETLLogger) LogStagingComplete(rows, conflicts int, duration time.Duration) {
	l.Info("Загрузка в staging завершена: %d строк, %d конфликтов. Длительность: %v", rows, conflicts, duration)
}

// LogPromotionComplete логирует завершение продвижения строк в fact-таблицу
func (l *ETLLogger) LogPromotionComplete(rows int, duration time.Duration) {
	l.Info("Продвижение в хранилище завершено: %d строк. Длительность: %v", rows, duration)
}

// LogRunComplete логирует завершение обработки файла выгрузки
func (l *ETLLogger) LogRunComplete(fileName string, stagingRows, warehouseRows, conflicts, errorCount int, duration time.Duration) {
	l.Info("Обработка файла %s завершена. Длительность: %v", fileName, duration)
	l.Info("Итог: %d строк в staging, %d строк в хранилище, %d конфликтов, %d ошибок",
		stagingRows, warehouseRows, conflicts, errorCount)
}
