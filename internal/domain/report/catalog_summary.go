package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogSummary is a point-in-time snapshot of the catalog, produced by the
// nightly summary job.
type CatalogSummary struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReportDate        time.Time       `gorm:"type:date;not null;uniqueIndex"`
	TotalProducts     int64           `gorm:"not null"`
	DraftProducts     int64           `gorm:"not null"`
	PublishedProducts int64           `gorm:"not null"`
	ArchivedProducts  int64           `gorm:"not null"`
	TotalStockUnits   int64           `gorm:"not null"`
	TotalStockValue   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	LowStockProducts  int64           `gorm:"not null"`
	Manufacturers     int64           `gorm:"not null"`
	GeneratedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CatalogSummary) TableName() string {
	return "catalog_summaries"
}

// NewCatalogSummary creates a summary snapshot for the given report date
func NewCatalogSummary(reportDate time.Time) *CatalogSummary {
	return &CatalogSummary{
		ID:          uuid.New(),
		ReportDate:  reportDate,
		GeneratedAt: time.Now(),
	}
}

// CatalogSummaryRepository persists summary snapshots
type CatalogSummaryRepository interface {
	// Save upserts the snapshot for its report date
	Save(ctx context.Context, summary *CatalogSummary) error

	// FindByDate finds the snapshot for a report date
	FindByDate(ctx context.Context, reportDate time.Time) (*CatalogSummary, error)

	// FindRecent returns the most recent snapshots, newest first
	FindRecent(ctx context.Context, limit int) ([]CatalogSummary, error)
}
