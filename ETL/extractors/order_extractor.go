package extractors

import (
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/models"
)

// Позиции колонок в выгрузке заказов
const (
	orderColOrderDate = iota
	orderColCTDate
	orderColOriginalEstimatedDeliveryDate
	orderColEstimatedDeliveryDate
	orderColOrderCode
	orderColFactoryCode
	orderColFactoryName
	orderColProductCode
	orderColProductName
	orderColQC
	orderColOrderQuantity
	orderColDeliveredQuantity
	orderColFactoryOrderCode
	orderColNote
	orderColNumericalOrder
	orderColWarehouseType
)

// NormalizeOrderRows преобразует строки выгрузки заказов в staging-записи.
// Строки без кода заказа или порядкового номера отбрасываются и учитываются
// в счетчике пропущенных, нормализация при этом продолжается
func (e *Extractor) NormalizeOrderRows(rows [][]string, now time.Time) ([]models.OrderStagingRecord, int) {
	records := make([]models.OrderStagingRecord, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		orderCode := textValue(row[orderColOrderCode])
		seq, ok := sequenceNumber(row[orderColNumericalOrder])

		// Обязательные поля натурального ключа
		if orderCode == nil || !ok {
			e.logger.Debug("Строка %d пропущена: отсутствует код заказа или порядковый номер", i+2)
			skipped++
			continue
		}

		record := models.OrderStagingRecord{
			OrderDate:                     parseDate(row[orderColOrderDate]),
			CTDate:                        parseDate(row[orderColCTDate]),
			OriginalEstimatedDeliveryDate: parseDate(row[orderColOriginalEstimatedDeliveryDate]),
			EstimatedDeliveryDate:         parseDate(row[orderColEstimatedDeliveryDate]),
			FactoryCode:                   textValue(row[orderColFactoryCode]),
			FactoryName:                   textValue(row[orderColFactoryName]),
			ProductCode:                   textValue(row[orderColProductCode]),
			ProductName:                   textValue(row[orderColProductName]),
			QC:                            textValue(row[orderColQC]),
			OrderQuantity:                 numberValue(row[orderColOrderQuantity]),
			DeliveredQuantity:             numberValue(row[orderColDeliveredQuantity]),
			FactoryOrderCode:              textValue(row[orderColFactoryOrderCode]),
			Note:                          textValue(row[orderColNote]),
			NumericalOrder:                seq,
			WarehouseType:                 textValue(row[orderColWarehouseType]),
			ImportTimestamp:               now,
		}

		// Синтез бизнес-ключа: код заказа + "-" + порядковый номер.
		// Порядковый номер различает повторы натурального ключа в выгрузке
		record.OrderCode = *orderCode + "-" + seq

		records = append(records, record)
	}

	if skipped > 0 {
		e.logger.Info("При нормализации выгрузки заказов пропущено строк: %d", skipped)
	}

	return records, skipped
}
