// routes/upload_handlers.go
package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/extractors"
	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/pipeline"
	"github.com/google/uuid"
)

// Допустимые расширения файлов выгрузок
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// UploadOrderHandler обрабатывает загрузку файла выгрузки заказов
func UploadOrderHandler(processor *pipeline.Processor, cfg config.ETLConfig) http.HandlerFunc {
	return uploadHandler(models.OrderKind, processor, cfg)
}

// UploadSalesHandler обрабатывает загрузку файла выгрузки продаж
func UploadSalesHandler(processor *pipeline.Processor, cfg config.ETLConfig) http.HandlerFunc {
	return uploadHandler(models.SalesKind, processor, cfg)
}

// uploadHandler сохраняет загруженный файл и синхронно запускает обработку.
// Частичный успех (с ошибками уровня строки) возвращается как 200 с отчетом;
// фатальная ошибка удаляет сохраненный файл и отклоняет загрузку
func uploadHandler(kind models.Kind, processor *pipeline.Processor, cfg config.ETLConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Ограничиваем размер запроса
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Некорректная форма или превышен допустимый размер файла", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Отсутствует обязательное поле file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExtensions[ext] {
			http.Error(w,
				fmt.Sprintf("Допустимы только файлы Excel (.xlsx, .xls), получено: %s", ext),
				http.StatusBadRequest)
			return
		}

		storedPath, err := saveUploadedFile(file, header.Filename, kind, cfg)
		if err != nil {
			log.Printf("Ошибка при сохранении загруженного файла: %v", err)
			http.Error(w, "Не удалось сохранить загруженный файл", http.StatusInternalServerError)
			return
		}

		var report *models.RunReport
		if kind == models.SalesKind {
			report, err = processor.ProcessSalesFile(storedPath)
		} else {
			report, err = processor.ProcessOrderFile(storedPath)
		}

		if err != nil {
			// Фатальная ошибка: сохраненный файл удаляется, загрузка отклоняется
			if removeErr := os.Remove(storedPath); removeErr != nil {
				log.Printf("Не удалось удалить файл %s: %v", storedPath, removeErr)
			}

			// Нарушение контракта файла — ошибка клиента,
			// сбой этапа загрузки или хранилища — ошибка сервера
			status := http.StatusInternalServerError
			if errors.Is(err, extractors.ErrInvalidExtract) {
				status = http.StatusBadRequest
			}
			http.Error(w, fmt.Sprintf("Ошибка обработки файла: %v", err), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Printf("Ошибка при формировании ответа: %v", err)
		}
	}
}

// saveUploadedFile сохраняет загруженный файл в каталог вида выгрузки
// под уникальным именем и возвращает путь к сохраненному файлу
func saveUploadedFile(file io.Reader, originalName string, kind models.Kind, cfg config.ETLConfig) (string, error) {
	dir := filepath.Join(cfg.UploadDir, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог %s: %w", dir, err)
	}

	// Временная метка и суффикс UUID исключают перезапись при повторных именах
	ext := filepath.Ext(originalName)
	stem := strings.TrimSuffix(filepath.Base(originalName), ext)
	storedName := fmt.Sprintf("%s_%s_%s%s",
		stem,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		ext)
	storedPath := filepath.Join(dir, storedName)

	out, err := os.Create(storedPath)
	if err != nil {
		return "", fmt.Errorf("не удалось создать файл %s: %w", storedPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(storedPath)
		return "", fmt.Errorf("не удалось записать файл %s: %w", storedPath, err)
	}

	return storedPath, nil
}
