package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindTables(t *testing.T) {
	assert.Equal(t, "copr13", OrderKind.StagingTable())
	assert.Equal(t, "copr23", SalesKind.StagingTable())
	assert.Equal(t, "fact_order", OrderKind.FactTable())
	assert.Equal(t, "fact_sales", SalesKind.FactTable())
}

func TestKindValid(t *testing.T) {
	assert.True(t, OrderKind.Valid())
	assert.True(t, SalesKind.Valid())
	assert.False(t, Kind("inventory").Valid())
}
