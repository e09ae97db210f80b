package extractors

import (
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
)

// Позиции колонок в выгрузке продаж
const (
	salesColSalesDate = iota
	salesColCTDate
	salesColSalesCode
	salesColFactoryCode
	salesColFactoryName
	salesColSalesman
	salesColProductCode
	salesColProductName
	salesColQC
	salesColWarehouseCode
	salesColSalesQuantity
	salesColOrderCode
	salesColImportCode
	salesColNote
	salesColFactoryOrderCode
)

// NormalizeSalesRows преобразует строки выгрузки продаж в staging-записи.
// Источник не передает порядковый номер, поэтому он назначается как
// нарастающий счетчик повторов кода продажи в порядке следования строк
func (e *Extractor) NormalizeSalesRows(rows [][]string, now time.Time) ([]models.SalesStagingRecord, int) {
	records := make([]models.SalesStagingRecord, 0, len(rows))
	skipped := 0

	// Счетчики повторов натурального ключа в рамках одной выгрузки
	seqByCode := make(map[string]int)

	for i, row := range rows {
		salesCode := textValue(row[salesColSalesCode])

		// Обязательное поле натурального ключа
		if salesCode == nil {
			e.logger.Debug("Строка %d пропущена: отсутствует код продажи", i+2)
			skipped++
			continue
		}

		seqByCode[*salesCode]++
		seq := fmt.Sprintf("%04d", seqByCode[*salesCode])

		record := models.SalesStagingRecord{
			SalesDate:        parseDate(row[salesColSalesDate]),
			CTDate:           parseDate(row[salesColCTDate]),
			FactoryCode:      textValue(row[salesColFactoryCode]),
			FactoryName:      textValue(row[salesColFactoryName]),
			Salesman:         textValue(row[salesColSalesman]),
			ProductCode:      textValue(row[salesColProductCode]),
			ProductName:      textValue(row[salesColProductName]),
			QC:               textValue(row[salesColQC]),
			WarehouseCode:    textValue(row[salesColWarehouseCode]),
			SalesQuantity:    numberValue(row[salesColSalesQuantity]),
			OrderCode:        textValue(row[salesColOrderCode]),
			ImportCode:       textValue(row[salesColImportCode]),
			Note:             textValue(row[salesColNote]),
			FactoryOrderCode: textValue(row[salesColFactoryOrderCode]),
			NumericalOrder:   seq,
			ImportTimestamp:  now,
		}

		// Синтез бизнес-ключа: код продажи + "-" + порядковый номер
		record.SalesCode = *salesCode + "-" + seq

		records = append(records, record)
	}

	if skipped > 0 {
		e.logger.Info("При нормализации выгрузки продаж пропущено строк: %d", skipped)
	}

	return records, skipped
}
