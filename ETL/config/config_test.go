package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"DW_DB_HOST", "DW_DB_PORT", "DW_DB_USER", "DW_DB_PASSWORD", "DW_DB_NAME",
		"DW_UPLOAD_DIR", "DW_ARCHIVE_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestGetConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := GetConfig()

	assert.Equal(t, "mysql", cfg.WarehouseConfig.Driver)
	assert.Equal(t, "localhost", cfg.WarehouseConfig.Host)
	assert.Equal(t, 3306, cfg.WarehouseConfig.Port)
	assert.Equal(t, "warehouse", cfg.WarehouseConfig.DBName)
	assert.Equal(t, "media/dw", cfg.UploadDir)

	// Бизнес-правила по умолчанию
	assert.Equal(t, []string{"2201"}, cfg.Rules.OrderCodePrefixes)
	assert.Equal(t, []string{"2301", "2302"}, cfg.Rules.SalesCodePrefixes)
	assert.Equal(t, "30895.2", cfg.Rules.FactoryRemap.CompositeCode)
	assert.Len(t, cfg.Rules.FactoryRemap.Markers, 4)
}

func TestGetConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DW_DB_HOST", "db.internal")
	t.Setenv("DW_DB_PORT", "3307")
	t.Setenv("DW_DB_USER", "etl")
	t.Setenv("DW_DB_NAME", "dw")
	t.Setenv("DW_UPLOAD_DIR", "/srv/dw/uploads")

	cfg := GetConfig()

	assert.Equal(t, "db.internal", cfg.WarehouseConfig.Host)
	assert.Equal(t, 3307, cfg.WarehouseConfig.Port)
	assert.Equal(t, "etl", cfg.WarehouseConfig.User)
	assert.Equal(t, "dw", cfg.WarehouseConfig.DBName)
	assert.Equal(t, "/srv/dw/uploads", cfg.UploadDir)
}

func TestGetConfigIgnoresInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("DW_DB_PORT", "не число")

	cfg := GetConfig()
	assert.Equal(t, 3306, cfg.WarehouseConfig.Port)
}
