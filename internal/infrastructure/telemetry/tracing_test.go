package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans swaps in an in-memory tracer provider for the duration of the
// test and returns the recorder holding every ended span.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

// spanAttrs flattens a recorded span's attributes into a map for assertions.
func spanAttrs(span sdktrace.ReadOnlySpan) map[string]interface{} {
	out := make(map[string]interface{}, len(span.Attributes()))
	for _, attr := range span.Attributes() {
		out[string(attr.Key)] = attr.Value.AsInterface()
	}
	return out
}

func TestStartSpan(t *testing.T) {
	t.Run("defaults to internal kind", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "clearance_document.validate")
		require.NotNil(t, span)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "clearance_document.validate", spans[0].Name())
		assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	})

	t.Run("applies start options", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "customs_gateway.submit",
			telemetry.WithAttribute(telemetry.SpanAttrDocumentID, "doc-42"),
			telemetry.WithSpanKind(trace.SpanKindClient),
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
		assert.Equal(t, "doc-42", spanAttrs(spans[0])[telemetry.SpanAttrDocumentID])
	})
}

func TestStartServiceSpan(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "clearance_document", "revert")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "clearance_document.revert", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	t.Run("records alternating pairs", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "receipt.complete")
		telemetry.SetAttributes(span,
			telemetry.SpanAttrReceiptID, "rcpt-7",
			telemetry.SpanAttrQuantity, 42,
			"partial", true,
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)

		attrs := spanAttrs(spans[0])
		assert.Equal(t, "rcpt-7", attrs[telemetry.SpanAttrReceiptID])
		assert.Equal(t, int64(42), attrs[telemetry.SpanAttrQuantity])
		assert.Equal(t, true, attrs["partial"])
	})

	t.Run("drops a trailing unpaired key", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "receipt.complete")
		telemetry.SetAttributes(span,
			"key1", "value1",
			"key2", "value2",
			"orphan_key",
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, spans[0].Attributes(), 2)
	})

	t.Run("skips pairs with a non-string key", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "receipt.complete")
		telemetry.SetAttributes(span,
			"valid_key", "value",
			123, "value for bogus key",
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, spans[0].Attributes(), 1)
	})

	t.Run("covers every supported value type", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "receipt.complete")
		telemetry.SetAttributes(span,
			"string", "value",
			"int", 42,
			"int64", int64(100),
			"float64", 3.14,
			"bool", true,
			"string_slice", []string{"a", "b"},
			"int_slice", []int{1, 2, 3},
			"int64_slice", []int64{10, 20},
			"float64_slice", []float64{1.1, 2.2},
			"bool_slice", []bool{true, false},
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.GreaterOrEqual(t, len(spans[0].Attributes()), 10)
	})
}

func TestSetAttribute(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "procurement_order.confirm")
		telemetry.SetAttribute(span, telemetry.SpanAttrOrderNumber, "PO-2026-0117")
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "PO-2026-0117", spanAttrs(spans[0])[telemetry.SpanAttrOrderNumber])
	})

	t.Run("uuid goes through fmt.Stringer", func(t *testing.T) {
		sr := recordSpans(t)

		documentID := uuid.New()
		_, span := telemetry.StartSpan(context.Background(), "clearance_document.cancel")
		telemetry.SetAttribute(span, telemetry.SpanAttrDocumentID, documentID)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, documentID.String(), spanAttrs(spans[0])[telemetry.SpanAttrDocumentID])
	})
}

func TestRecordError(t *testing.T) {
	t.Run("sets error status and exception event", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "clearance_document.revert")
		telemetry.RecordError(span, errors.New("movement already reversed"))
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)

		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "movement already reversed", spans[0].Status().Description)

		events := spans[0].Events()
		require.GreaterOrEqual(t, len(events), 1)
		assert.Equal(t, "exception", events[0].Name)
	})

	t.Run("nil error leaves the span clean", func(t *testing.T) {
		sr := recordSpans(t)

		_, span := telemetry.StartSpan(context.Background(), "clearance_document.revert")
		telemetry.RecordError(span, nil)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		telemetry.RecordError(nil, errors.New("lost span"))
	})
}

func TestSetOK(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "receipt.complete")
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "reversal.execute")
	telemetry.AddEvent(span, "stock_released",
		telemetry.SpanAttrProductCode, "HTS-8471.30",
		telemetry.SpanAttrQuantity, 10,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_released", events[0].Name)

	attrs := make(map[string]interface{}, len(events[0].Attributes))
	for _, attr := range events[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "HTS-8471.30", attrs[telemetry.SpanAttrProductCode])
	assert.Equal(t, int64(10), attrs[telemetry.SpanAttrQuantity])
}

func TestSpanFromContext(t *testing.T) {
	recordSpans(t)

	// Empty context yields a no-op span, not nil.
	assert.NotNil(t, telemetry.SpanFromContext(context.Background()))

	ctx, created := telemetry.StartSpan(context.Background(), "clearance_document.validate")
	defer created.End()

	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, created.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestContextWithSpan(t *testing.T) {
	recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "clearance_document.validate")
	defer span.End()

	ctx := telemetry.ContextWithSpan(context.Background(), span)
	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, span.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestTraceAndSpanIDs(t *testing.T) {
	recordSpans(t)

	ctx := context.Background()
	assert.Empty(t, telemetry.GetTraceID(ctx))
	assert.Empty(t, telemetry.GetSpanID(ctx))

	ctx, span := telemetry.StartSpan(ctx, "clearance_document.validate")
	defer span.End()

	traceID := telemetry.GetTraceID(ctx)
	assert.Len(t, traceID, 32) // 16 bytes hex-encoded

	spanID := telemetry.GetSpanID(ctx)
	assert.Len(t, spanID, 16) // 8 bytes hex-encoded
}

func TestNestedSpans(t *testing.T) {
	sr := recordSpans(t)

	ctx, parent := telemetry.StartSpan(context.Background(), "clearance_document.revert")
	_, child := telemetry.StartSpan(ctx, "stock_movement.reverse")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	byName := make(map[string]sdktrace.ReadOnlySpan, 2)
	for _, s := range spans {
		byName[s.Name()] = s
	}
	parentSpan, ok := byName["clearance_document.revert"]
	require.True(t, ok)
	childSpan, ok := byName["stock_movement.reverse"]
	require.True(t, ok)

	assert.Equal(t, parentSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())
	assert.Equal(t, parentSpan.SpanContext().SpanID(), childSpan.Parent().SpanID())
}

func TestNilSpanHelpers(t *testing.T) {
	// Every helper must tolerate a nil span.
	telemetry.SetAttributes(nil, "key", "value")
	telemetry.SetAttribute(nil, "key", "value")
	telemetry.SetOK(nil)
	telemetry.AddEvent(nil, "event_name", "key", "value")
}
