package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogSummaryRepository implements report.CatalogSummaryRepository using GORM
type GormCatalogSummaryRepository struct {
	db *gorm.DB
}

// NewCatalogSummaryRepository creates a new GormCatalogSummaryRepository
func NewCatalogSummaryRepository(db *Database) *GormCatalogSummaryRepository {
	return &GormCatalogSummaryRepository{db: db.DB}
}

// Save upserts the snapshot for its report date
func (r *GormCatalogSummaryRepository) Save(ctx context.Context, summary *report.CatalogSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_date"}},
			UpdateAll: true,
		}).
		Create(summary).Error
}

// FindByDate finds the snapshot for a report date
func (r *GormCatalogSummaryRepository) FindByDate(ctx context.Context, reportDate time.Time) (*report.CatalogSummary, error) {
	var summary report.CatalogSummary
	err := r.db.WithContext(ctx).
		Where("report_date = ?", reportDate.Format("2006-01-02")).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// FindRecent returns the most recent snapshots, newest first
func (r *GormCatalogSummaryRepository) FindRecent(ctx context.Context, limit int) ([]report.CatalogSummary, error) {
	if limit <= 0 {
		limit = 30
	}
	var summaries []report.CatalogSummary
	err := r.db.WithContext(ctx).
		Order("report_date DESC").
		Limit(limit).
		Find(&summaries).Error
	return summaries, err
}

var _ report.CatalogSummaryRepository = (*GormCatalogSummaryRepository)(nil)
