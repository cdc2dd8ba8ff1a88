package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database span generation.
type DBTracingConfig struct {
	Enabled          bool
	LogFullSQL       bool // include full SQL in spans; leaks data in production
	SlowQueryThresh  time.Duration
	DBSystem         string
	WithoutVariables bool // strip bind variables from recorded SQL
}

// DefaultDBTracingConfig returns the secure defaults: tracing off, variables
// stripped, 200ms slow-query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin attaches otelgorm spans to every query and enriches them
// with rows-affected, table and slow-query attributes.
type DBTracingPlugin struct {
	config DBTracingConfig
	log    *zap.Logger
}

// NewDBTracingPlugin builds a tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, log *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, log: log}
}

// RegisterOtelGorm installs the otelgorm plugin plus the timing callbacks on
// db. A disabled config makes this a no-op.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.log.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerQueryCallbacks(db, "otel_timing", p.markQueryStart, p.enrichSpan); err != nil {
		return err
	}

	p.log.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

func (p *DBTracingPlugin) markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

func (p *DBTracingPlugin) enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Missing rows are normal lookups, not span errors.
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

// registrar matches gorm's unexported callback type.
type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerQueryCallbacks hooks before/after callbacks around every gorm
// operation type under the given name prefix.
func registerQueryCallbacks(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	for _, op := range []string{"create", "query", "update", "delete", "row", "raw"} {
		anchor := "gorm:" + op

		var atBefore, atAfter registrar
		switch op {
		case "create":
			atBefore, atAfter = db.Callback().Create().Before(anchor), db.Callback().Create().After(anchor)
		case "query":
			atBefore, atAfter = db.Callback().Query().Before(anchor), db.Callback().Query().After(anchor)
		case "update":
			atBefore, atAfter = db.Callback().Update().Before(anchor), db.Callback().Update().After(anchor)
		case "delete":
			atBefore, atAfter = db.Callback().Delete().Before(anchor), db.Callback().Delete().After(anchor)
		case "row":
			atBefore, atAfter = db.Callback().Row().Before(anchor), db.Callback().Row().After(anchor)
		case "raw":
			atBefore, atAfter = db.Callback().Raw().Before(anchor), db.Callback().Raw().After(anchor)
		}

		if before != nil {
			if err := atBefore.Register(prefix+":before_"+op, before); err != nil {
				return err
			}
		}
		if after != nil {
			if err := atAfter.Register(prefix+":after_"+op, after); err != nil {
				return err
			}
		}
	}
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps ctx with the current time so the after-query
// callback can compute elapsed duration.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
