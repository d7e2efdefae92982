package telemetry

import (
	"time"

	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	startTimeKey = "telemetry:start"
	slowAttr     = "db.slow_query"
)

// RegisterGormTracing adds otelgorm spans to every statement of db and marks
// spans of statements slower than cfg.DBSlowQueryThresh. Statement
// variables stay out of spans unless cfg.DBLogFullSQL is set.
func RegisterGormTracing(db *gorm.DB, cfg config.TelemetryConfig, dbName string, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	if err := registerSlowQueryCallbacks(db, threshold); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", dbName),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startTimeKey, time.Now())
	}
	after := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok || time.Since(start) < threshold {
			return
		}
		if span := trace.SpanFromContext(tx.Statement.Context); span.IsRecording() {
			span.SetAttributes(attribute.Bool(slowAttr, true))
		}
	}

	cb := db.Callback()
	for _, reg := range []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, after) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, after) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, after) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, after) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, after) }},
	} {
		if err := reg.before("telemetry:before_" + reg.name); err != nil {
			return err
		}
		if err := reg.after("telemetry:after_" + reg.name); err != nil {
			return err
		}
	}
	return nil
}
