package extractors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidExtract маркирует нарушение контракта файла выгрузки:
// нечитаемая книга, пустой лист, несоответствие количества колонок.
// Такие ошибки вызваны содержимым файла, а не состоянием хранилища
var ErrInvalidExtract = errors.New("нарушение контракта файла выгрузки")

func invalidExtract(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidExtract, fmt.Sprintf(format, v...))
}

// Extractor читает файлы выгрузок и нормализует их строки в staging-записи
type Extractor struct {
	logger *utils.ETLLogger
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// ReadExtract читает файл выгрузки и возвращает строки данных (без заголовка).
// Порядок колонок — это контракт с источником: количество колонок проверяется
// до нормализации, несоответствие считается фатальной ошибкой
func (e *Extractor) ReadExtract(path string, kind models.Kind) ([][]string, error) {
	expected := models.OrderColumnCount
	if kind == models.SalesKind {
		expected = models.SalesColumnCount
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, invalidExtract("не удалось открыть файл выгрузки %s: %v", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, invalidExtract("файл выгрузки %s не содержит листов", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать лист %s: %w", sheetName, err)
	}

	if len(rows) == 0 {
		return nil, invalidExtract("файл выгрузки %s пуст", path)
	}

	// Первая строка — заголовок, привязка идет по позиции колонки.
	// Ячейки заголовка заполнены, поэтому его длина — это надежная
	// арность файла: и лишняя, и пропавшая колонка обнаруживаются здесь
	if len(rows[0]) != expected {
		return nil, invalidExtract(
			"несоответствие количества колонок в файле %s: заголовок содержит %d колонок, ожидалось %d",
			path, len(rows[0]), expected)
	}

	dataRows := rows[1:]

	for i, row := range dataRows {
		if len(row) > expected {
			return nil, invalidExtract(
				"несоответствие количества колонок в файле %s: строка %d содержит %d колонок, ожидалось %d",
				path, i+2, len(row), expected)
		}
	}

	// Excelize отбрасывает пустые ячейки в конце строки,
	// дополняем строки до ожидаемой арности
	padded := make([][]string, 0, len(dataRows))
	for _, row := range dataRows {
		if len(row) < expected {
			full := make([]string, expected)
			copy(full, row)
			row = full
		}
		padded = append(padded, row)
	}

	e.logger.Debug("Прочитано %d строк данных из файла %s", len(padded), path)
	return padded, nil
}

// Форматы дат в выгрузках: день перед месяцем
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-01-02",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate разбирает дату в формате "день перед месяцем".
// Неразбираемое значение становится NULL, а не фатальной ошибкой
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}

// CleanFloatArtifact приводит числовые идентификаторы, пришедшие из
// таблицы как числа с плавающей точкой, обратно к целочисленной
// строковой форме: хвостовое ".0" отбрасывается
func CleanFloatArtifact(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// textValue нормализует текстовую ячейку: пустое значение становится NULL,
// артефакты плавающей точки очищаются
func textValue(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	cleaned := CleanFloatArtifact(s)
	return &cleaned
}

// numberValue разбирает числовую ячейку; неразбираемое значение становится NULL
func numberValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Числа из таблиц могут содержать разделители тысяч
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &v
}

// sequenceNumber приводит порядковый номер строки к формату из 4 цифр.
// Источник может передать его как число с плавающей точкой
func sequenceNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%04d", int(v)), true
}
