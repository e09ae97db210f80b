package transform

import (
	"strings"

	"github.com/LilVoxy/coursework_dw/ETL/models"
)

// keyPrefix возвращает токен бизнес-ключа до первого "-"
func keyPrefix(businessKey string) string {
	if idx := strings.Index(businessKey, "-"); idx >= 0 {
		return businessKey[:idx]
	}
	return businessKey
}

func prefixAccepted(prefix string, accepted []string) bool {
	for _, p := range accepted {
		if prefix == p {
			return true
		}
	}
	return false
}

// FilterOrderRows применяет бизнес-фильтры к строкам заказов перед
// продвижением в хранилище: префикс бизнес-ключа должен входить в
// допустимый набор, поле qc должно быть заполнено.
// Возвращает оставленные строки и количество отброшенных
func FilterOrderRows(rows []models.OrderFactRow, acceptedPrefixes []string) ([]models.OrderFactRow, int) {
	kept := make([]models.OrderFactRow, 0, len(rows))

	for _, row := range rows {
		if !prefixAccepted(keyPrefix(row.OrderCode), acceptedPrefixes) {
			continue
		}
		if row.QC == nil {
			continue
		}
		kept = append(kept, row)
	}

	return kept, len(rows) - len(kept)
}

// FilterSalesRows применяет бизнес-фильтры к строкам продаж
func FilterSalesRows(rows []models.SalesFactRow, acceptedPrefixes []string) ([]models.SalesFactRow, int) {
	kept := make([]models.SalesFactRow, 0, len(rows))

	for _, row := range rows {
		if !prefixAccepted(keyPrefix(row.SalesCode), acceptedPrefixes) {
			continue
		}
		if row.QC == nil {
			continue
		}
		kept = append(kept, row)
	}

	return kept, len(rows) - len(kept)
}
