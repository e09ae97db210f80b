package models

// Kind определяет вид обрабатываемой выгрузки
type Kind string

const (
	// OrderKind — выгрузка заказов
	OrderKind Kind = "order"

	// SalesKind — выгрузка продаж
	SalesKind Kind = "sales"
)

// Количество колонок в выгрузке каждого вида.
// Порядок колонок — это версионируемый контракт с источником данных
const (
	OrderColumnCount = 16
	SalesColumnCount = 15
)

// StagingTable возвращает имя staging-таблицы для данного вида выгрузки
func (k Kind) StagingTable() string {
	if k == SalesKind {
		return "copr23"
	}
	return "copr13"
}

// FactTable возвращает имя fact-таблицы для данного вида выгрузки
func (k Kind) FactTable() string {
	if k == SalesKind {
		return "fact_sales"
	}
	return "fact_order"
}

// Valid сообщает, известен ли данный вид выгрузки
func (k Kind) Valid() bool {
	return k == OrderKind || k == SalesKind
}
