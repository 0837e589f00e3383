package telemetry

import (
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM query instrumentation.
type DBTracingConfig struct {
	Enabled         bool
	SlowQueryThresh time.Duration
	DBSystem        string
	// WithoutVariables keeps bind parameters out of span attributes.
	WithoutVariables bool
}

// DefaultDBTracingConfig returns the production defaults: disabled, slow
// queries flagged over 200ms, parameters excluded.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin installs otelgorm spans plus a slow-query warning log.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin. Registration is a no-op while the
// config is disabled.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

const dbTracingStartKey = "telemetry:query_start"

// RegisterOtelGorm attaches the otelgorm plugin and the slow-query
// callbacks to the GORM instance.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if p.config.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm plugin: %w", err)
	}

	if err := db.Callback().Query().Before("gorm:query").
		Register("telemetry:query_start", func(db *gorm.DB) {
			db.InstanceSet(dbTracingStartKey, time.Now())
		}); err != nil {
		return fmt.Errorf("register query start callback: %w", err)
	}
	if err := db.Callback().Query().After("gorm:query").
		Register("telemetry:slow_query", p.slowQueryCallback); err != nil {
		return fmt.Errorf("register slow query callback: %w", err)
	}

	p.logger.Info("database tracing enabled",
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	v, ok := db.InstanceGet(dbTracingStartKey)
	if !ok {
		return
	}
	started, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	if elapsed < p.config.SlowQueryThresh {
		return
	}
	p.logger.Warn("slow query",
		zap.Duration("elapsed", elapsed),
		zap.String("table", db.Statement.Table),
		zap.Int64("rows", db.RowsAffected),
	)
}
