package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// disabledMeterProvider returns a provider without an export pipeline. Its
// Meter falls back to the global provider, so instruments can still be
// constructed and recorded against.
func disabledMeterProvider(t *testing.T) *telemetry.MeterProvider {
	t.Helper()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "clearance-api",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, mp)
	return mp
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp := disabledMeterProvider(t)

	assert.False(t, mp.IsEnabled())

	gotCfg := mp.GetConfig()
	assert.Equal(t, "clearance-api", gotCfg.ServiceName)
	assert.False(t, gotCfg.Enabled)

	// All lifecycle methods are no-ops without a pipeline.
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	// Needs a reachable OTEL collector; run with `make otel-up`.
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    1 * time.Second,
		ServiceName:       "clearance-api",
		Insecure:          true,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.True(t, mp.IsEnabled())
	require.NotNil(t, mp.Meter("clearance"))

	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestMeterProvider_MeterWhenDisabled(t *testing.T) {
	mp := disabledMeterProvider(t)
	assert.NotNil(t, mp.Meter("clearance"))
}

func TestMeterProvider_ShutdownWithCancelledContext(t *testing.T) {
	mp := disabledMeterProvider(t)

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, mp.Shutdown(cancelledCtx))
}

func TestMetricsConfig_ZeroValue(t *testing.T) {
	cfg := telemetry.MetricsConfig{}

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.CollectorEndpoint)
	assert.Zero(t, cfg.ExportInterval)
	assert.Empty(t, cfg.ServiceName)
}

func TestMeterProvider_DefaultExportInterval(t *testing.T) {
	// Needs a reachable OTEL collector; run with `make otel-up`.
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    0, // falls back to the 60s default
		ServiceName:       "clearance-api",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, mp)

	_ = mp.Shutdown(ctx)
}

func TestNewMeterProvider_InvalidEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.ErrorLevel))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The exporter dials lazily, so construction typically succeeds even
	// against an endpoint that can never resolve.
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "invalid-host:99999",
		ExportInterval:    1 * time.Second,
		ServiceName:       "clearance-api",
	}, logger)
	if err != nil {
		t.Logf("Expected connection error: %v", err)
		return
	}

	_ = mp.Shutdown(context.Background())
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("clearance")

	counter, err := telemetry.NewCounter(meter,
		"clearance_documents_processed_total", "Processed clearance documents", "{document}")
	require.NoError(t, err)
	require.NotNil(t, counter)

	counter.Add(ctx, 5, telemetry.AttrDocumentAction.String("validate"))
	counter.Add(ctx, 10, telemetry.AttrDocumentAction.String("cancel"))

	counter.Inc(ctx)
	counter.Inc(ctx, telemetry.AttrDocumentOutcome.String("accepted"))
	counter.Inc(ctx, telemetry.AttrDocumentOutcome.String("rejected"))
}

func TestHistogram(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("clearance")

	t.Run("record with route attribute", func(t *testing.T) {
		histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Description: "HTTP request duration",
			Unit:        "s",
			Boundaries:  telemetry.HTTPDurationBuckets,
		})
		require.NoError(t, err)
		require.NotNil(t, histogram)

		histogram.Record(ctx, 0.005)
		histogram.Record(ctx, 0.1, attribute.String("route", "/api/v1/clearance-documents"))
		histogram.Record(ctx, 2.5, attribute.String("route", "/api/v1/procurement-orders"))
	})

	t.Run("record durations", func(t *testing.T) {
		histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Description: "Database query duration",
			Unit:        "s",
			Boundaries:  telemetry.DBDurationBuckets,
		})
		require.NoError(t, err)

		histogram.RecordDuration(ctx, 5*time.Millisecond)
		histogram.RecordDuration(ctx, 100*time.Millisecond, telemetry.AttrDBOperation.String("SELECT"))
		histogram.RecordDuration(ctx, 1*time.Second, telemetry.AttrDBOperation.String("INSERT"))
	})

	t.Run("custom boundaries", func(t *testing.T) {
		histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "bulk_validation_duration_seconds",
			Description: "Bulk validation pass duration",
			Unit:        "s",
			Boundaries:  []float64{0.1, 0.5, 1.0, 5.0, 10.0},
		})
		require.NoError(t, err)
		require.NotNil(t, histogram)

		histogram.Record(ctx, 0.25)
	})

	t.Run("sdk default boundaries", func(t *testing.T) {
		histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "reversal_duration_seconds",
			Description: "Reversal saga duration",
			Unit:        "s",
		})
		require.NoError(t, err)
		require.NotNil(t, histogram)

		histogram.Record(ctx, 1.5)
	})
}

func TestGauge(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("clearance")

	gauge, err := telemetry.NewGauge(meter,
		"open_clearance_documents", "Clearance documents not yet archived", "{document}")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	gauge.Record(ctx, 10)
	gauge.Record(ctx, 15, attribute.String("status", "submitted"))
	gauge.Record(ctx, 5, attribute.String("status", "in_review"))
}

func TestFloatGauge(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("clearance")

	gauge, err := telemetry.NewFloatGauge(meter,
		"pending_duty_amount", "Duty pending settlement", "MXN")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	gauge.Record(ctx, 45.5)
	gauge.Record(ctx, 1317.2, telemetry.AttrLocationCode.String("WH-TIJ"))
	gauge.Record(ctx, 23.1, telemetry.AttrLocationCode.String("WH-MTY"))
}

func TestCommonAttributeKeys(t *testing.T) {
	assert.Equal(t, "user_id", string(telemetry.AttrUserID))
	assert.Equal(t, "http.method", string(telemetry.AttrHTTPMethod))
	assert.Equal(t, "http.status_code", string(telemetry.AttrHTTPStatusCode))
	assert.Equal(t, "http.route", string(telemetry.AttrHTTPRoute))
	assert.Equal(t, "db.operation", string(telemetry.AttrDBOperation))
	assert.Equal(t, "db.table", string(telemetry.AttrDBTable))
	assert.Equal(t, "db.pool.state", string(telemetry.AttrDBState))
	assert.Equal(t, "document_action", string(telemetry.AttrDocumentAction))
	assert.Equal(t, "document_outcome", string(telemetry.AttrDocumentOutcome))
	assert.Equal(t, "severity", string(telemetry.AttrSeverity))
	assert.Equal(t, "location_code", string(telemetry.AttrLocationCode))
	assert.Equal(t, "product_id", string(telemetry.AttrProductID))
}

func TestBucketBoundaries(t *testing.T) {
	assert.Equal(t, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, telemetry.HTTPDurationBuckets)
	assert.Equal(t, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}, telemetry.DBDurationBuckets)
	assert.Equal(t, []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}, telemetry.SmallDurationBuckets)

	// Buckets must be strictly increasing for the SDK to accept them.
	for _, buckets := range [][]float64{
		telemetry.HTTPDurationBuckets,
		telemetry.DBDurationBuckets,
		telemetry.SmallDurationBuckets,
	} {
		for i := 1; i < len(buckets); i++ {
			assert.Greater(t, buckets[i], buckets[i-1])
		}
	}
}
