// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the customs clearance system.
// It tracks order confirmations, clearance document activity, reversals, and
// stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderConfirmedTotal     *Counter
	documentResolutionTotal *Counter
	reversalTotal           *Counter
	returnCreatedTotal      *Counter
	bulkValidationTotal     *Counter

	// Gauge metrics (point-in-time values)
	draftDocumentCount *Gauge
	onHandQuantity     *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	clearanceProvider ClearanceMetricsProvider
}

// ClearanceMetricsProvider provides clearance and stock data for periodic
// metrics collection. This interface allows the telemetry layer to query
// aggregate state without depending on the domain packages directly.
type ClearanceMetricsProvider interface {
	// GetDraftDocumentCount returns the number of clearance documents still in draft
	GetDraftDocumentCount(ctx context.Context) (int64, error)

	// GetOnHandQuantityByLocation returns total on-hand quantity per tracked location
	GetOnHandQuantityByLocation(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	ClearanceProvider ClearanceMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		clearanceProvider: cfg.ClearanceProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderConfirmedTotal, err = NewCounter(
		cfg.Meter,
		"aduana_order_confirmed_total",
		"Total number of procurement orders confirmed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	// Clearance document metrics
	bm.documentResolutionTotal, err = NewCounter(
		cfg.Meter,
		"aduana_clearance_document_resolution_total",
		"Total number of clearance document resolutions at order confirmation",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	// Reversal metrics
	bm.reversalTotal, err = NewCounter(
		cfg.Meter,
		"aduana_order_reversal_total",
		"Total number of procurement order reversals",
		"{reversals}",
	)
	if err != nil {
		return nil, err
	}

	bm.returnCreatedTotal, err = NewCounter(
		cfg.Meter,
		"aduana_return_receipt_total",
		"Total number of return receipts created by reversals",
		"{receipts}",
	)
	if err != nil {
		return nil, err
	}

	// Bulk validation metrics
	bm.bulkValidationTotal, err = NewCounter(
		cfg.Meter,
		"aduana_clearance_validation_runs_total",
		"Total number of bulk clearance validation runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	// Clearance and stock gauge metrics
	bm.draftDocumentCount, err = NewGauge(
		cfg.Meter,
		"aduana_clearance_draft_documents",
		"Number of clearance documents currently in draft",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.onHandQuantity, err = NewGauge(
		cfg.Meter,
		"aduana_stock_on_hand_quantity",
		"Current on-hand quantity per tracked location",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderConfirmed records a procurement order confirmation.
// This should be called from the application layer when an order is confirmed.
func (bm *BusinessMetrics) RecordOrderConfirmed(ctx context.Context) {
	bm.orderConfirmedTotal.Inc(ctx)
}

// RecordDocumentResolution records how a clearance document was resolved at
// confirmation time (created, reused, or already linked).
func (bm *BusinessMetrics) RecordDocumentResolution(ctx context.Context, action string) {
	bm.documentResolutionTotal.Inc(ctx,
		AttrDocumentAction.String(action),
	)
}

// =============================================================================
// Reversal Metrics
// =============================================================================

// RecordReversal records a completed order reversal, labeled with the fate of
// the linked clearance document (none, cancelled, or retained).
func (bm *BusinessMetrics) RecordReversal(ctx context.Context, documentOutcome string) {
	bm.reversalTotal.Inc(ctx,
		AttrDocumentOutcome.String(documentOutcome),
	)
}

// RecordReturnCreated records a return receipt created during a reversal.
func (bm *BusinessMetrics) RecordReturnCreated(ctx context.Context) {
	bm.returnCreatedTotal.Inc(ctx)
}

// =============================================================================
// Validation Metrics
// =============================================================================

// RecordBulkValidation records a bulk clearance validation run, labeled with
// the severity of the resulting report.
func (bm *BusinessMetrics) RecordBulkValidation(ctx context.Context, severity string) {
	bm.bulkValidationTotal.Inc(ctx,
		AttrSeverity.String(severity),
	)
}

// =============================================================================
// Clearance and Stock Gauges
// =============================================================================

// RecordDraftDocumentCount records the number of clearance documents in draft.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordDraftDocumentCount(ctx context.Context, count int64) {
	bm.draftDocumentCount.Record(ctx, count)
}

// RecordOnHandQuantity records the current on-hand quantity for a location.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOnHandQuantity(ctx context.Context, locationCode string, quantity int64) {
	bm.onHandQuantity.Record(ctx, quantity,
		AttrLocationCode.String(locationCode),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects clearance and stock metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectClearanceMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectClearanceMetrics(ctx)
		}
	}
}

// collectClearanceMetrics collects clearance and stock gauge metrics.
func (bm *BusinessMetrics) collectClearanceMetrics(ctx context.Context) {
	if bm.clearanceProvider == nil {
		bm.logger.Debug("No clearance provider configured, skipping gauge metrics collection")
		return
	}

	// Collect draft document count
	draftCount, err := bm.clearanceProvider.GetDraftDocumentCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get draft document count", zap.Error(err))
	} else {
		bm.RecordDraftDocumentCount(ctx, draftCount)
	}

	// Collect on-hand quantity by location
	onHandByLocation, err := bm.clearanceProvider.GetOnHandQuantityByLocation(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get on-hand quantity by location", zap.Error(err))
	} else {
		for locationCode, quantity := range onHandByLocation {
			bm.RecordOnHandQuantity(ctx, locationCode, quantity)
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
