package transform

import (
	"strings"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/extractors"
	"github.com/LilVoxy/coursework_dw/ETL/models"
)

// Подстановка для незаполненного сопутствующего поля:
// ни один маркер с ней не совпадает, код остается без изменений
const missingCompanion = "temp"

// resolveMarker проверяет сопутствующее поле против всех маркеров правила
// без учета регистра. Маркеры проверяются в фиксированном порядке,
// при нескольких совпадениях побеждает последний совпавший
func resolveMarker(companion *string, rule config.RemapRule) (string, bool) {
	value := missingCompanion
	if companion != nil {
		value = *companion
	}

	upper := strings.ToUpper(value)

	corrected := ""
	for _, marker := range rule.Markers {
		if strings.Contains(upper, strings.ToUpper(marker.Substring)) {
			corrected = marker.CorrectedCode
		}
	}

	return corrected, corrected != ""
}

// RemapOrderFactoryCodes переназначает код составной фабрики в строках
// заказов. Для строк с кодом rule.CompositeCode строится таблица
// соответствия по бизнес-ключу, затем исправленные коды сливаются обратно
func RemapOrderFactoryCodes(rows []models.OrderFactRow, rule config.RemapRule) []models.OrderFactRow {
	fixed := make(map[string]string)

	for _, row := range rows {
		if row.FactoryCode == nil || *row.FactoryCode != rule.CompositeCode {
			continue
		}
		if corrected, ok := resolveMarker(row.FactoryOrderCode, rule); ok {
			fixed[row.OrderCode] = corrected
		}
	}

	if len(fixed) == 0 {
		return rows
	}

	for i := range rows {
		if corrected, ok := fixed[rows[i].OrderCode]; ok {
			code := corrected
			rows[i].FactoryCode = &code
		}
	}

	return rows
}

// RemapSalesFactoryCodes переназначает код составной фабрики в строках продаж
func RemapSalesFactoryCodes(rows []models.SalesFactRow, rule config.RemapRule) []models.SalesFactRow {
	fixed := make(map[string]string)

	for _, row := range rows {
		if row.FactoryCode == nil || *row.FactoryCode != rule.CompositeCode {
			continue
		}
		if corrected, ok := resolveMarker(row.FactoryOrderCode, rule); ok {
			fixed[row.SalesCode] = corrected
		}
	}

	if len(fixed) == 0 {
		return rows
	}

	for i := range rows {
		if corrected, ok := fixed[rows[i].SalesCode]; ok {
			code := corrected
			rows[i].FactoryCode = &code
		}
	}

	return rows
}

// cleanPtr очищает артефакты плавающей точки в текстовом поле
func cleanPtr(v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := extractors.CleanFloatArtifact(*v)
	return &cleaned
}

// CleanOrderRowArtifacts повторно нормализует кодовые и текстовые поля
// строк заказов перед продвижением: зеркалирует очистку нормализатора,
// чтобы покрыть артефакты, внесенные при слияниях
func CleanOrderRowArtifacts(rows []models.OrderFactRow) []models.OrderFactRow {
	for i := range rows {
		rows[i].FactoryCode = cleanPtr(rows[i].FactoryCode)
		rows[i].FactoryOrderCode = cleanPtr(rows[i].FactoryOrderCode)
		rows[i].ProductCode = cleanPtr(rows[i].ProductCode)
		rows[i].ProductName = cleanPtr(rows[i].ProductName)
		rows[i].QC = cleanPtr(rows[i].QC)
		rows[i].DepositRate = cleanPtr(rows[i].DepositRate)
		rows[i].PaymentRegistrationCode = cleanPtr(rows[i].PaymentRegistrationCode)
		rows[i].WarehouseType = cleanPtr(rows[i].WarehouseType)
		rows[i].FinishCode = cleanPtr(rows[i].FinishCode)
	}
	return rows
}

// CleanSalesRowArtifacts повторно нормализует кодовые и текстовые поля строк продаж
func CleanSalesRowArtifacts(rows []models.SalesFactRow) []models.SalesFactRow {
	for i := range rows {
		rows[i].FactoryCode = cleanPtr(rows[i].FactoryCode)
		rows[i].FactoryOrderCode = cleanPtr(rows[i].FactoryOrderCode)
		rows[i].ProductCode = cleanPtr(rows[i].ProductCode)
		rows[i].ProductName = cleanPtr(rows[i].ProductName)
		rows[i].QC = cleanPtr(rows[i].QC)
		rows[i].OrderCode = cleanPtr(rows[i].OrderCode)
		rows[i].WarehouseCode = cleanPtr(rows[i].WarehouseCode)
		rows[i].WarehouseType = cleanPtr(rows[i].WarehouseType)
		rows[i].ImportCode = cleanPtr(rows[i].ImportCode)
	}
	return rows
}
