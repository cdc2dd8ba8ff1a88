// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CatalogMetrics tracks catalog and identity activity: product lifecycle,
// stock movement, login outcomes, and the health gauges collected
// periodically from the database.
type CatalogMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	productCreatedTotal       *Counter
	productStatusChangedTotal *Counter
	stockAdjustedUnits        *Counter
	loginTotal                *Counter
	uploadTotal               *Counter

	// Gauge metrics (point-in-time values)
	productCountByStatus *Gauge
	lowStockCount        *Gauge
	cacheHitRatio        *FloatGauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	catalogProvider CatalogMetricsProvider
	cacheStatsFn    func() float64
}

// CatalogMetricsProvider supplies catalog aggregates for periodic collection.
// The interface keeps the telemetry layer from depending on the catalog
// domain directly.
type CatalogMetricsProvider interface {
	// GetProductCountByStatus returns product counts keyed by lifecycle status
	GetProductCountByStatus(ctx context.Context) (map[string]int64, error)

	// GetLowStockCount returns the number of published products at or below the threshold
	GetLowStockCount(ctx context.Context, threshold int) (int64, error)
}

// CatalogMetricsConfig holds configuration for catalog metrics.
type CatalogMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	LowStockThreshold int           // Default: 10
	CatalogProvider   CatalogMetricsProvider
	CacheStatsFn      func() float64 // optional, reports the read-cache hit ratio
}

// NewCatalogMetrics creates a new CatalogMetrics instance.
func NewCatalogMetrics(cfg CatalogMetricsConfig) (*CatalogMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CatalogMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		catalogProvider: cfg.CatalogProvider,
		cacheStatsFn:    cfg.CacheStatsFn,
	}

	var err error

	cm.productCreatedTotal, err = NewCounter(
		cfg.Meter,
		"storefront_product_created_total",
		"Total number of products created",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	cm.productStatusChangedTotal, err = NewCounter(
		cfg.Meter,
		"storefront_product_status_changed_total",
		"Total number of product lifecycle transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	cm.stockAdjustedUnits, err = NewCounter(
		cfg.Meter,
		"storefront_stock_adjusted_units",
		"Total absolute stock movement in units",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	cm.loginTotal, err = NewCounter(
		cfg.Meter,
		"storefront_login_total",
		"Total number of login attempts",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	cm.uploadTotal, err = NewCounter(
		cfg.Meter,
		"storefront_upload_total",
		"Total number of product image uploads",
		"{uploads}",
	)
	if err != nil {
		return nil, err
	}

	cm.productCountByStatus, err = NewGauge(
		cfg.Meter,
		"storefront_product_count",
		"Current number of products per lifecycle status",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	cm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"storefront_low_stock_count",
		"Number of published products at or below the low-stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	cm.cacheHitRatio, err = NewFloatGauge(
		cfg.Meter,
		"storefront_product_cache_hit_ratio",
		"Hit ratio of the product read cache",
		"1",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// LoginStatus labels login attempt outcomes.
type LoginStatus string

const (
	LoginStatusSuccess LoginStatus = "success"
	LoginStatusFailed  LoginStatus = "failed"
	LoginStatusLocked  LoginStatus = "locked"
)

// RecordProductCreated records a product creation event.
func (cm *CatalogMetrics) RecordProductCreated(ctx context.Context) {
	cm.productCreatedTotal.Inc(ctx)
}

// RecordProductStatusChanged records a lifecycle transition.
func (cm *CatalogMetrics) RecordProductStatusChanged(ctx context.Context, newStatus string) {
	cm.productStatusChangedTotal.Inc(ctx,
		AttrProductStatus.String(newStatus),
	)
}

// RecordStockAdjusted records absolute stock movement for a product.
func (cm *CatalogMetrics) RecordStockAdjusted(ctx context.Context, productID string, units int64) {
	if units < 0 {
		units = -units
	}
	cm.stockAdjustedUnits.Add(ctx, units,
		AttrProductID.String(productID),
	)
}

// RecordLogin records a login attempt outcome.
func (cm *CatalogMetrics) RecordLogin(ctx context.Context, status LoginStatus) {
	cm.loginTotal.Inc(ctx,
		AttrLoginStatus.String(string(status)),
	)
}

// RecordUpload records a product image upload.
func (cm *CatalogMetrics) RecordUpload(ctx context.Context, backend string) {
	cm.uploadTotal.Inc(ctx,
		AttrStorageBackend.String(backend),
	)
}

// RecordProductCount records the current number of products for a status.
func (cm *CatalogMetrics) RecordProductCount(ctx context.Context, status string, count int64) {
	cm.productCountByStatus.Record(ctx, count,
		AttrProductStatus.String(status),
	)
}

// RecordLowStockCount records the number of products at or below the threshold.
func (cm *CatalogMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	cm.lowStockCount.Record(ctx, count)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It is non-blocking; use Stop() to stop collection.
func (cm *CatalogMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration, lowStockThreshold int) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if lowStockThreshold <= 0 {
			lowStockThreshold = 10
		}

		go cm.runPeriodicCollection(ctx, interval, lowStockThreshold)
	})
}

func (cm *CatalogMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration, lowStockThreshold int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.collectCatalogMetrics(ctx, lowStockThreshold)

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("stopping periodic catalog metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("context cancelled, stopping periodic catalog metrics collection")
			return
		case <-ticker.C:
			cm.collectCatalogMetrics(ctx, lowStockThreshold)
		}
	}
}

func (cm *CatalogMetrics) collectCatalogMetrics(ctx context.Context, lowStockThreshold int) {
	if cm.cacheStatsFn != nil {
		cm.cacheHitRatio.Record(ctx, cm.cacheStatsFn())
	}

	if cm.catalogProvider == nil {
		cm.logger.Debug("no catalog provider configured, skipping catalog metrics collection")
		return
	}

	counts, err := cm.catalogProvider.GetProductCountByStatus(ctx)
	if err != nil {
		cm.logger.Warn("failed to get product counts", zap.Error(err))
	} else {
		for status, count := range counts {
			cm.RecordProductCount(ctx, status, count)
		}
	}

	lowStock, err := cm.catalogProvider.GetLowStockCount(ctx, lowStockThreshold)
	if err != nil {
		cm.logger.Warn("failed to get low stock count", zap.Error(err))
	} else {
		cm.RecordLowStockCount(ctx, lowStock)
	}
}

// Stop stops the periodic collection.
func (cm *CatalogMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCatalogMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
