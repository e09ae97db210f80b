package models

import (
	"time"
)

// OrderStagingRecord представляет одну строку выгрузки заказов,
// нормализованную для загрузки в staging-таблицу copr13.
// OrderCode содержит синтезированный бизнес-ключ:
// исходный код заказа + "-" + порядковый номер строки (4 цифры)
type OrderStagingRecord struct {
	// Колонки, присутствующие в выгрузке
	OrderDate                     *time.Time
	CTDate                        *time.Time
	OriginalEstimatedDeliveryDate *time.Time
	EstimatedDeliveryDate         *time.Time
	OrderCode                     string
	FactoryCode                   *string
	FactoryName                   *string
	ProductCode                   *string
	ProductName                   *string
	QC                            *string
	OrderQuantity                 *float64
	DeliveredQuantity             *float64
	FactoryOrderCode              *string
	Note                          *string
	NumericalOrder                string
	WarehouseType                 *string

	// Колонки staging-таблицы, отсутствующие в выгрузке.
	// Заполняются явным NULL, чтобы арность вставки была стабильной
	TaxType                       *string
	Department                    *string
	Salesman                      *string
	DepositRate                   *string
	PaymentRegistrationCode       *string
	PaymentRegistrationName       *string
	DeliveryAddress               *string
	PackageOrderQuantity          *float64
	DeliveredPackageOrderQuantity *float64
	Unit                          *string
	PackageUnit                   *string
	PreCT                         *string
	FinishCode                    *string

	// Момент нормализации строки
	ImportTimestamp time.Time
}

// SalesStagingRecord представляет одну строку выгрузки продаж,
// нормализованную для загрузки в staging-таблицу copr23.
// SalesCode содержит синтезированный бизнес-ключ:
// исходный код продажи + "-" + порядковый номер в рамках кода (4 цифры)
type SalesStagingRecord struct {
	// Колонки, присутствующие в выгрузке
	SalesDate        *time.Time
	CTDate           *time.Time
	SalesCode        string
	FactoryCode      *string
	FactoryName      *string
	Salesman         *string
	ProductCode      *string
	ProductName      *string
	QC               *string
	WarehouseCode    *string
	SalesQuantity    *float64
	OrderCode        *string
	ImportCode       *string
	Note             *string
	FactoryOrderCode *string

	// Колонки staging-таблицы, отсутствующие в выгрузке
	NumericalOrder       string
	GiftQuantity         *float64
	Unit                 *string
	SmallUnit            *string
	PackageSalesQuantity *float64
	PackageGiftQuantity  *float64
	PackageUnit          *string
	Department           *string
	WarehouseType        *string
	ExportFactory        *string

	// Момент нормализации строки
	ImportTimestamp time.Time
}
