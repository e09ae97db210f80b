package models

import (
	"time"
)

// OrderFactRow представляет строку fact_order: отфильтрованную и
// скорректированную бизнес-правилами проекцию staging-строки заказа
type OrderFactRow struct {
	OrderDate                     *time.Time
	OrderCode                     string
	CTDate                        *time.Time
	FactoryCode                   *string
	FactoryOrderCode              *string
	TaxType                       *string
	Department                    *string
	Salesman                      *string
	DepositRate                   *string
	PaymentRegistrationCode       *string
	PaymentRegistrationName       *string
	DeliveryAddress               *string
	ProductCode                   *string
	ProductName                   *string
	QC                            *string
	WarehouseType                 *string
	OrderQuantity                 *float64
	DeliveredQuantity             *float64
	PackageOrderQuantity          *float64
	DeliveredPackageOrderQuantity *float64
	Unit                          *string
	PackageUnit                   *string
	EstimatedDeliveryDate         *time.Time
	OriginalEstimatedDeliveryDate *time.Time
	PreCT                         *string
	FinishCode                    *string

	// Временная метка staging-строки и момент продвижения в хранилище
	ImportTimestamp   time.Time
	ImportWHTimestamp time.Time
}

// SalesFactRow представляет строку fact_sales
type SalesFactRow struct {
	ProductCode          *string
	ProductName          *string
	QC                   *string
	FactoryCode          *string
	SalesDate            *time.Time
	SalesCode            string
	OrderCode            *string
	SalesQuantity        *float64
	Unit                 *string
	PackageSalesQuantity *float64
	PackageUnit          *string
	Department           *string
	Salesman             *string
	WarehouseCode        *string
	WarehouseType        *string
	ImportCode           *string
	FactoryOrderCode     *string

	ImportTimestamp   time.Time
	ImportWHTimestamp time.Time
}
