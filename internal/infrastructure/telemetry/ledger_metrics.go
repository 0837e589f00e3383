// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics tracks posting and balance activity in the general ledger.
// It satisfies the metrics interfaces of the posting engine and the balance
// aggregator, so both can report without depending on OpenTelemetry directly.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	batchPostedTotal      *Counter
	balanceRecomputeTotal *Counter
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	lm.batchPostedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_batch_posted_total",
		"Total number of GL batches posted",
		"{batches}",
	)
	if err != nil {
		return nil, err
	}

	lm.balanceRecomputeTotal, err = NewCounter(
		cfg.Meter,
		"ledger_balance_recompute_total",
		"Total number of party balance recomputations",
		"{recomputes}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// BatchPosted records a posted GL batch. The currencyUnresolved label marks
// batches that kept their original currency because no FX rate was available.
func (lm *LedgerMetrics) BatchPosted(ctx context.Context, sourceType string, currencyUnresolved bool) {
	lm.batchPostedTotal.Inc(ctx,
		AttrSourceType.String(sourceType),
		AttrUnresolved.Bool(currencyUnresolved),
	)
}

// BalanceRecomputed records a party balance recomputation.
func (lm *LedgerMetrics) BalanceRecomputed(ctx context.Context, kind string, approximate bool) {
	lm.balanceRecomputeTotal.Inc(ctx,
		AttrPartyKind.String(kind),
		AttrApproximate.Bool(approximate),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
