package config

import (
	"os"
	"strconv"
	"time"
)

// ETLConfig содержит конфигурацию для ETL-процесса загрузки витрины
type ETLConfig struct {
	// Конфигурация для подключения к базе данных хранилища
	WarehouseConfig DatabaseConfig `json:"warehouse_config"`

	// Интервал запуска планировщика ETL
	RunInterval time.Duration `json:"run_interval"`

	// Каталог, в котором сохраняются загруженные файлы выгрузок
	// (подкаталоги order/ и sales/)
	UploadDir string `json:"upload_dir"`

	// Каталог для архивирования успешно обработанных файлов
	ArchiveDir string `json:"archive_dir"`

	// Максимальный размер загружаемого файла в байтах
	MaxFileSize int64 `json:"max_file_size"`

	// Бизнес-правила продвижения строк в хранилище
	Rules BusinessRules `json:"rules"`

	// Включение/отключение детального логирования
	EnableDetailedLogging bool `json:"enable_detailed_logging"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// BusinessRules содержит настраиваемые бизнес-правила фильтрации и
// переназначения кодов. Правила зависят от периода и конкретного
// развертывания, поэтому вынесены в конфигурацию
type BusinessRules struct {
	// Допустимые префиксы ключа заказа (токен до первого "-")
	OrderCodePrefixes []string `json:"order_code_prefixes"`

	// Допустимые префиксы ключа продажи
	SalesCodePrefixes []string `json:"sales_code_prefixes"`

	// Правило переназначения кода составной фабрики
	FactoryRemap RemapRule `json:"factory_remap"`
}

// RemapRule описывает переназначение кода составной фабрики по маркерам
// в сопутствующем текстовом поле (factory_order_code)
type RemapRule struct {
	// Код составной фабрики, подлежащий уточнению
	CompositeCode string `json:"composite_code"`

	// Упорядоченный список маркеров. Маркеры проверяются по порядку,
	// при нескольких совпадениях побеждает последний совпавший
	Markers []RemapMarker `json:"markers"`
}

// RemapMarker описывает один маркер и соответствующий ему уточненный код
type RemapMarker struct {
	Substring     string `json:"substring"`
	CorrectedCode string `json:"corrected_code"`
}

// Значения конфигурации по умолчанию
var (
	DefaultWarehouseConfig = DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "",
		DBName:   "warehouse",
	}

	DefaultBusinessRules = BusinessRules{
		OrderCodePrefixes: []string{"2201"},
		SalesCodePrefixes: []string{"2301", "2302"},
		FactoryRemap: RemapRule{
			CompositeCode: "30895.2",
			Markers: []RemapMarker{
				{Substring: "ST", CorrectedCode: "30895.1"},
				{Substring: "TN", CorrectedCode: "30895"},
				{Substring: "BP", CorrectedCode: "30895.5"},
				{Substring: "QT", CorrectedCode: "30895.4"},
			},
		},
	}

	DefaultETLConfig = ETLConfig{
		WarehouseConfig:       DefaultWarehouseConfig,
		RunInterval:           1 * time.Hour,
		UploadDir:             "media/dw",
		ArchiveDir:            "media/dw/processed",
		MaxFileSize:           50 * 1024 * 1024,
		Rules:                 DefaultBusinessRules,
		EnableDetailedLogging: true,
	}
)

// GetConfig возвращает конфигурацию ETL с учетом переменных окружения
func GetConfig() ETLConfig {
	config := DefaultETLConfig

	// Переопределения подключения к базе данных из окружения
	if host := os.Getenv("DW_DB_HOST"); host != "" {
		config.WarehouseConfig.Host = host
	}
	if portStr := os.Getenv("DW_DB_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.WarehouseConfig.Port = port
		}
	}
	if user := os.Getenv("DW_DB_USER"); user != "" {
		config.WarehouseConfig.User = user
	}
	if password := os.Getenv("DW_DB_PASSWORD"); password != "" {
		config.WarehouseConfig.Password = password
	}
	if name := os.Getenv("DW_DB_NAME"); name != "" {
		config.WarehouseConfig.DBName = name
	}

	// Переопределение каталогов хранения файлов
	if dir := os.Getenv("DW_UPLOAD_DIR"); dir != "" {
		config.UploadDir = dir
	}
	if dir := os.Getenv("DW_ARCHIVE_DIR"); dir != "" {
		config.ArchiveDir = dir
	}

	return config
}
