// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormCatalogMetricsProvider implements CatalogMetricsProvider using GORM.
// It queries the products table directly for aggregated metrics.
type GormCatalogMetricsProvider struct {
	db *gorm.DB
}

// NewGormCatalogMetricsProvider creates a new GormCatalogMetricsProvider.
func NewGormCatalogMetricsProvider(db *gorm.DB) *GormCatalogMetricsProvider {
	return &GormCatalogMetricsProvider{db: db}
}

// GetProductCountByStatus returns product counts keyed by lifecycle status.
func (p *GormCatalogMetricsProvider) GetProductCountByStatus(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("products").
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.Count
	}

	return m, nil
}

// GetLowStockCount returns the number of published products at or below the threshold.
func (p *GormCatalogMetricsProvider) GetLowStockCount(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("status = ?", "published").
		Where("stock_quantity <= ?", threshold).
		Count(&count).Error

	return count, err
}
