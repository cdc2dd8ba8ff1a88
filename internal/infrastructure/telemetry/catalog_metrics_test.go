package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

func TestNewCatalogMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, cm)
}

func TestNewCatalogMetrics_NilMeter(t *testing.T) {
	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, cm)
	assert.Equal(t, "NewCatalogMetrics: meter cannot be nil", err.Error())
}

func TestCatalogMetrics_RecordProductLifecycle(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	cm.RecordProductCreated(ctx)
	cm.RecordProductStatusChanged(ctx, "published")
	cm.RecordProductStatusChanged(ctx, "archived")
}

func TestCatalogMetrics_RecordStockAdjusted(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	cm.RecordStockAdjusted(ctx, "prod-1", 25)
	// Negative deltas are recorded as absolute movement
	cm.RecordStockAdjusted(ctx, "prod-1", -10)
}

func TestCatalogMetrics_RecordLogin(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	cm.RecordLogin(ctx, telemetry.LoginStatusSuccess)
	cm.RecordLogin(ctx, telemetry.LoginStatusFailed)
	cm.RecordLogin(ctx, telemetry.LoginStatusLocked)
}

func TestCatalogMetrics_RecordGauges(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	cm.RecordProductCount(ctx, "published", 42)
	cm.RecordLowStockCount(ctx, 3)
	cm.RecordUpload(ctx, "s3")
}

type stubCatalogProvider struct {
	counts   map[string]int64
	lowStock int64
}

func (s *stubCatalogProvider) GetProductCountByStatus(_ context.Context) (map[string]int64, error) {
	return s.counts, nil
}

func (s *stubCatalogProvider) GetLowStockCount(_ context.Context, _ int) (int64, error) {
	return s.lowStock, nil
}

func TestCatalogMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	provider := &stubCatalogProvider{
		counts:   map[string]int64{"draft": 1, "published": 5},
		lowStock: 2,
	}

	cm, err := telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
		Meter:           meter,
		CatalogProvider: provider,
		CacheStatsFn:    func() float64 { return 0.85 },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm.StartPeriodicCollection(ctx, 0, 0)
	cm.Stop()
}
