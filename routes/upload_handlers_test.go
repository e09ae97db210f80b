// routes/upload_handlers_test.go
package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/pipeline"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

func newUploadTestEnv(t *testing.T) (*pipeline.Processor, sqlmock.Sqlmock, config.ETLConfig) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultETLConfig
	cfg.UploadDir = t.TempDir()

	processor := pipeline.NewProcessor(db, utils.NewNopLogger(), cfg.Rules)
	return processor, mock, cfg
}

// multipartBody собирает multipart-запрос с одним файлом в поле file
func multipartBody(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadHandlerRejectsNonExcel(t *testing.T) {
	processor, mock, cfg := newUploadTestEnv(t)

	body, contentType := multipartBody(t, "данные.csv", []byte("a;b;c"))
	req := httptest.NewRequest(http.MethodPost, "/api/etl/upload/order", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	UploadOrderHandler(processor, cfg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadHandlerRejectsMissingFileField(t *testing.T) {
	processor, mock, cfg := newUploadTestEnv(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("другое", "значение"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/etl/upload/order", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	UploadOrderHandler(processor, cfg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadHandlerRejectsNonMultipart(t *testing.T) {
	processor, mock, cfg := newUploadTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/etl/upload/sales", bytes.NewBufferString("не форма"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	UploadSalesHandler(processor, cfg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadHandlerRemovesFileOnInvalidExtract(t *testing.T) {
	processor, mock, cfg := newUploadTestEnv(t)

	// Создание записи журнала проходит, затем чтение файла падает:
	// содержимое не является книгой Excel. Нарушение контракта
	// файла — это ошибка клиента
	mock.ExpectExec("INSERT INTO etl_run_log").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE etl_run_log").WillReturnResult(sqlmock.NewResult(0, 1))

	body, contentType := multipartBody(t, "orders.xlsx", []byte("это не xlsx"))
	req := httptest.NewRequest(http.MethodPost, "/api/etl/upload/order", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	UploadOrderHandler(processor, cfg)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Сохраненный файл удален после фатальной ошибки
	entries, err := os.ReadDir(filepath.Join(cfg.UploadDir, "order"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadHandlerServerErrorOnWarehouseFailure(t *testing.T) {
	processor, mock, cfg := newUploadTestEnv(t)

	// Сбой хранилища при создании записи журнала — ошибка сервера
	mock.ExpectExec("INSERT INTO etl_run_log").WillReturnError(assert.AnError)

	body, contentType := multipartBody(t, "orders.xlsx", []byte("это не xlsx"))
	req := httptest.NewRequest(http.MethodPost, "/api/etl/upload/order", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	UploadOrderHandler(processor, cfg)(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries, err := os.ReadDir(filepath.Join(cfg.UploadDir, "order"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUploadedFileUniqueNames(t *testing.T) {
	cfg := config.DefaultETLConfig
	cfg.UploadDir = t.TempDir()

	first, err := saveUploadedFile(bytes.NewBufferString("один"), "orders.xlsx", "order", cfg)
	require.NoError(t, err)

	second, err := saveUploadedFile(bytes.NewBufferString("два"), "orders.xlsx", "order", cfg)
	require.NoError(t, err)

	// Повторная загрузка с тем же именем не перезаписывает первый файл
	assert.NotEqual(t, first, second)
	assert.Equal(t, ".xlsx", filepath.Ext(first))

	got, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("один"), got)
}
