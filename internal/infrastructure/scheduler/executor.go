package scheduler

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// LowStockThreshold marks published products at or below this quantity as low stock
const LowStockThreshold = 10

// CatalogJobExecutor runs the catalog background jobs
type CatalogJobExecutor struct {
	db          *persistence.Database
	summaryRepo report.CatalogSummaryRepository
	blacklist   auth.TokenBlacklist
	logger      *zap.Logger
}

// NewCatalogJobExecutor creates a new CatalogJobExecutor
func NewCatalogJobExecutor(
	db *persistence.Database,
	summaryRepo report.CatalogSummaryRepository,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *CatalogJobExecutor {
	return &CatalogJobExecutor{
		db:          db,
		summaryRepo: summaryRepo,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// Execute dispatches a job to its handler
func (e *CatalogJobExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeCatalogSummary:
		return e.generateCatalogSummary(ctx, job)
	case JobTypeBlacklistSweep:
		return e.sweepBlacklist(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

func (e *CatalogJobExecutor) generateCatalogSummary(ctx context.Context, job *Job) error {
	db := e.db.DB.WithContext(ctx)
	summary := report.NewCatalogSummary(job.ReportDate)

	type statusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []statusCount
	if err := db.Table("products").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return fmt.Errorf("count products by status: %w", err)
	}
	for _, sc := range statusCounts {
		summary.TotalProducts += sc.Count
		switch sc.Status {
		case "draft":
			summary.DraftProducts = sc.Count
		case "published":
			summary.PublishedProducts = sc.Count
		case "archived":
			summary.ArchivedProducts = sc.Count
		}
	}

	type stockTotals struct {
		Units int64
		Value decimal.Decimal
	}
	var totals stockTotals
	if err := db.Table("products").
		Select("COALESCE(SUM(stock_quantity), 0) AS units, COALESCE(SUM(price * stock_quantity), 0) AS value").
		Scan(&totals).Error; err != nil {
		return fmt.Errorf("sum stock totals: %w", err)
	}
	summary.TotalStockUnits = totals.Units
	summary.TotalStockValue = totals.Value

	if err := db.Table("products").
		Where("status = ?", "published").
		Where("stock_quantity <= ?", LowStockThreshold).
		Count(&summary.LowStockProducts).Error; err != nil {
		return fmt.Errorf("count low stock products: %w", err)
	}

	if err := db.Table("manufacturers").Count(&summary.Manufacturers).Error; err != nil {
		return fmt.Errorf("count manufacturers: %w", err)
	}

	if err := e.summaryRepo.Save(ctx, summary); err != nil {
		return fmt.Errorf("save catalog summary: %w", err)
	}

	e.logger.Info("Catalog summary generated",
		zap.Time("report_date", summary.ReportDate),
		zap.Int64("total_products", summary.TotalProducts),
		zap.Int64("stock_units", summary.TotalStockUnits),
		zap.String("stock_value", summary.TotalStockValue.String()),
	)

	return nil
}

func (e *CatalogJobExecutor) sweepBlacklist(ctx context.Context) error {
	removed, err := e.blacklist.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep token blacklist: %w", err)
	}
	if removed > 0 {
		e.logger.Info("Token blacklist swept", zap.Int("removed", removed))
	}
	return nil
}
