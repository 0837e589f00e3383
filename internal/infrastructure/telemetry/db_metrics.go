package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig controls connection pool metrics collection.
type DBMetricsConfig struct {
	CollectInterval time.Duration
}

// DefaultDBMetricsConfig samples the pool every 15 seconds.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{CollectInterval: 15 * time.Second}
}

// DBMetrics periodically samples database/sql pool statistics into gauges:
// open, in-use and idle connections plus the cumulative wait time for a
// connection.
type DBMetrics struct {
	sqlDB  *sql.DB
	logger *zap.Logger

	connections *Gauge
	waitedFor   *Histogram

	stop chan struct{}
	done chan struct{}
}

// RegisterDBMetrics wires pool metrics for the given GORM instance and
// starts the sampling loop. It returns nil when the meter provider is
// disabled; callers must Stop a non-nil result on shutdown.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !mp.IsEnabled() {
		return nil, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB for metrics: %w", err)
	}

	meter := mp.Meter("db")
	connections, err := NewGauge(meter, "db_pool_connections",
		"Database pool connections by state", "{connection}")
	if err != nil {
		return nil, err
	}
	waitedFor, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_pool_wait_duration",
		Description: "Cumulative time waited for a pool connection",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		sqlDB:       sqlDB,
		logger:      logger,
		connections: connections,
		waitedFor:   waitedFor,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	interval := cfg.CollectInterval
	if interval == 0 {
		interval = DefaultDBMetricsConfig().CollectInterval
	}
	go m.loop(interval)

	logger.Info("database pool metrics enabled", zap.Duration("interval", interval))
	return m, nil
}

func (m *DBMetrics) loop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.collect(context.Background())
		}
	}
}

func (m *DBMetrics) collect(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.connections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
	m.connections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.connections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.waitedFor.Record(ctx, stats.WaitDuration.Seconds())
}

// Stop ends the sampling loop and waits for it to exit.
func (m *DBMetrics) Stop() {
	close(m.stop)
	<-m.done
}
