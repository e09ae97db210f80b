package pipeline

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/LilVoxy/coursework_dw/ETL/config"
	"github.com/LilVoxy/coursework_dw/ETL/extractors"
	"github.com/LilVoxy/coursework_dw/ETL/load"
	"github.com/LilVoxy/coursework_dw/ETL/models"
	"github.com/LilVoxy/coursework_dw/ETL/transform"
	"github.com/LilVoxy/coursework_dw/ETL/utils"
)

// Processor выполняет полный цикл обработки одного файла выгрузки:
// нормализация -> загрузка в staging -> водяная отметка -> бизнес-фильтры
// и переназначение кодов -> продвижение в fact-таблицу -> сверка измерений.
// Все этапы выполняются последовательно на одном подключении,
// внутреннего параллелизма по строкам нет
type Processor struct {
	db        *sql.DB
	logger    *utils.ETLLogger
	rules     config.BusinessRules
	extractor *extractors.Extractor
	staging   *load.StagingLoader
	facts     *load.FactLoader
	dims      *load.DimensionLoader
	watermark *transform.WatermarkSelector
	logRepo   models.ETLLogRepository
}

// NewProcessor создает новый экземпляр Processor
func NewProcessor(db *sql.DB, logger *utils.ETLLogger, rules config.BusinessRules) *Processor {
	return &Processor{
		db:        db,
		logger:    logger,
		rules:     rules,
		extractor: extractors.NewExtractor(logger),
		staging:   load.NewStagingLoader(db, logger),
		facts:     load.NewFactLoader(db, logger),
		dims:      load.NewDimensionLoader(db, logger),
		watermark: transform.NewWatermarkSelector(db, logger),
		logRepo:   models.NewMySQLETLLogRepository(db),
	}
}

// ProcessOrderFile обрабатывает файл выгрузки заказов.
// Фатальная ошибка (нечитаемый файл, несоответствие колонок, сбой этапа)
// прерывает обработку и возвращается вызывающему; ошибки уровня строки
// накапливаются в отчете и обработку не прерывают
func (p *Processor) ProcessOrderFile(path string) (*models.RunReport, error) {
	report := &models.RunReport{
		FileName:  filepath.Base(path),
		Kind:      models.OrderKind,
		StartedAt: time.Now(),
	}

	p.logger.LogRunStart(string(models.OrderKind), report.FileName)

	logID, err := p.logRepo.CreateLogEntry(report.FileName, models.OrderKind, report.StartedAt)
	if err != nil {
		return report, err
	}

	// 1. Чтение и нормализация выгрузки
	rows, err := p.extractor.ReadExtract(path, models.OrderKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	records, skipped := p.extractor.NormalizeOrderRows(rows, time.Now())
	report.SkippedRows = skipped

	// 2. Загрузка в staging-таблицу
	inserted, conflicts, rowErrors, err := p.staging.LoadOrders(records)
	if err != nil {
		return p.failRun(report, logID, err)
	}
	report.StagingRows = inserted
	report.Conflicts = conflicts
	report.AddErrors(rowErrors)

	// 3. Определение водяной отметки хранилища
	watermark, err := p.watermark.LatestImport(models.OrderKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	// 4. Выборка новых staging-строк
	newRows, err := p.watermark.SelectNewOrders(watermark)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	if len(newRows) == 0 {
		p.logger.Info("Нет новых данных для продвижения в хранилище")
		return p.finishRun(report, logID)
	}

	// 5. Бизнес-фильтры и переназначение кода составной фабрики
	filtered, dropped := transform.FilterOrderRows(newRows, p.rules.OrderCodePrefixes)
	if dropped > 0 {
		p.logger.Info("Бизнес-фильтрами отброшено строк заказов: %d", dropped)
	}

	filtered = transform.RemapOrderFactoryCodes(filtered, p.rules.FactoryRemap)
	filtered = transform.CleanOrderRowArtifacts(filtered)

	// 6. Продвижение в fact_order
	promoted, rowErrors, err := p.facts.PromoteOrders(filtered)
	if err != nil {
		return p.failRun(report, logID, err)
	}
	report.WarehouseRows = promoted
	report.AddErrors(rowErrors)

	// 7. Сверка измерений: фабрики, затем продукты
	report.NewFactories, err = p.dims.ReconcileFactories(models.OrderKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	report.NewProducts, err = p.dims.ReconcileProducts(models.OrderKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	return p.finishRun(report, logID)
}

// ProcessSalesFile обрабатывает файл выгрузки продаж
func (p *Processor) ProcessSalesFile(path string) (*models.RunReport, error) {
	report := &models.RunReport{
		FileName:  filepath.Base(path),
		Kind:      models.SalesKind,
		StartedAt: time.Now(),
	}

	p.logger.LogRunStart(string(models.SalesKind), report.FileName)

	logID, err := p.logRepo.CreateLogEntry(report.FileName, models.SalesKind, report.StartedAt)
	if err != nil {
		return report, err
	}

	// 1. Чтение и нормализация выгрузки
	rows, err := p.extractor.ReadExtract(path, models.SalesKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	records, skipped := p.extractor.NormalizeSalesRows(rows, time.Now())
	report.SkippedRows = skipped

	// 2. Загрузка в staging-таблицу
	inserted, conflicts, rowErrors, err := p.staging.LoadSales(records)
	if err != nil {
		return p.failRun(report, logID, err)
	}
	report.StagingRows = inserted
	report.Conflicts = conflicts
	report.AddErrors(rowErrors)

	// 3. Определение водяной отметки хранилища
	watermark, err := p.watermark.LatestImport(models.SalesKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	// 4. Выборка новых staging-строк
	newRows, err := p.watermark.SelectNewSales(watermark)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	if len(newRows) == 0 {
		p.logger.Info("Нет новых данных для продвижения в хранилище")
		return p.finishRun(report, logID)
	}

	// 5. Бизнес-фильтры и переназначение кода составной фабрики
	filtered, dropped := transform.FilterSalesRows(newRows, p.rules.SalesCodePrefixes)
	if dropped > 0 {
		p.logger.Info("Бизнес-фильтрами отброшено строк продаж: %d", dropped)
	}

	filtered = transform.RemapSalesFactoryCodes(filtered, p.rules.FactoryRemap)
	filtered = transform.CleanSalesRowArtifacts(filtered)

	// 6. Продвижение в fact_sales
	promoted, rowErrors, err := p.facts.PromoteSales(filtered)
	if err != nil {
		return p.failRun(report, logID, err)
	}
	report.WarehouseRows = promoted
	report.AddErrors(rowErrors)

	// 7. Сверка измерений: фабрики, затем продукты
	report.NewFactories, err = p.dims.ReconcileFactories(models.SalesKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	report.NewProducts, err = p.dims.ReconcileProducts(models.SalesKind)
	if err != nil {
		return p.failRun(report, logID, err)
	}

	return p.finishRun(report, logID)
}

// finishRun закрывает отчет и запись журнала при успешном завершении.
// Частичный успех (с ошибками уровня строки) также считается успехом
func (p *Processor) finishRun(report *models.RunReport, logID int) (*models.RunReport, error) {
	report.FinishedAt = time.Now()

	if err := p.logRepo.UpdateLogEntrySuccess(
		logID,
		report.FinishedAt,
		report.StagingRows,
		report.WarehouseRows,
		report.Conflicts,
		len(report.Errors)); err != nil {
		p.logger.Error("Ошибка при обновлении записи журнала ETL: %v", err)
	}

	p.logger.LogRunComplete(
		report.FileName,
		report.StagingRows,
		report.WarehouseRows,
		report.Conflicts,
		len(report.Errors),
		report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

// failRun закрывает отчет и запись журнала при фатальной ошибке
func (p *Processor) failRun(report *models.RunReport, logID int, cause error) (*models.RunReport, error) {
	report.FinishedAt = time.Now()

	p.logger.Error("Обработка файла %s прервана: %v", report.FileName, cause)

	if err := p.logRepo.UpdateLogEntryFailure(logID, report.FinishedAt, cause.Error()); err != nil {
		p.logger.Error("Ошибка при обновлении записи журнала ETL: %v", err)
	}

	return report, fmt.Errorf("ошибка при обработке файла %s: %w", report.FileName, cause)
}
