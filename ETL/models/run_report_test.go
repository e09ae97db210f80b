package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunReportAddErrors(t *testing.T) {
	report := &RunReport{FileName: "orders.xlsx", Kind: OrderKind}

	report.AddErrors(nil)
	assert.Empty(t, report.Errors)

	report.AddErrors([]string{"ошибка строки 1"})
	report.AddErrors([]string{"ошибка строки 2", "ошибка строки 3"})

	assert.Equal(t, []string{"ошибка строки 1", "ошибка строки 2", "ошибка строки 3"}, report.Errors)
}
