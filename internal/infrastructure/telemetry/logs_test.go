package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func disabledLogsProvider(t *testing.T) *LoggerProvider {
	t.Helper()
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "clearance-api",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	return provider
}

// enabledLogsProvider points at a port nothing listens on. The OTLP exporter
// dials lazily, so the pipeline comes up and buffers records regardless.
func enabledLogsProvider(t *testing.T) *LoggerProvider {
	t.Helper()
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "clearance-api",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewLoggerProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled config carries no pipeline", func(t *testing.T) {
		provider := disabledLogsProvider(t)

		assert.False(t, provider.IsEnabled())
		assert.Nil(t, provider.GetLoggerProvider())
		assert.NoError(t, provider.Shutdown(ctx))
	})

	t.Run("enabled without a reachable collector", func(t *testing.T) {
		provider := enabledLogsProvider(t)

		assert.True(t, provider.IsEnabled())
		assert.NotNil(t, provider.GetLoggerProvider())
	})

	t.Run("config is round-tripped", func(t *testing.T) {
		provider := disabledLogsProvider(t)

		cfg := provider.GetConfig()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, "localhost:14317", cfg.CollectorEndpoint)
		assert.Equal(t, "clearance-api", cfg.ServiceName)
		assert.True(t, cfg.Insecure)
	})

	t.Run("force flush on disabled provider is a no-op", func(t *testing.T) {
		provider := disabledLogsProvider(t)
		assert.NoError(t, provider.ForceFlush(ctx))
	})

	t.Run("repeated shutdown is safe", func(t *testing.T) {
		provider := disabledLogsProvider(t)
		assert.NoError(t, provider.Shutdown(ctx))
		assert.NoError(t, provider.Shutdown(ctx))
	})
}

func TestNewZapOTELCore(t *testing.T) {
	t.Run("nil provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName: "clearance-api",
			Level:       zapcore.InfoLevel,
		})
		require.NotNil(t, core)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
	})

	t.Run("disabled provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "clearance-api",
			LoggerProvider: disabledLogsProvider(t),
			Level:          zapcore.InfoLevel,
		})
		require.NotNil(t, core)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
	})

	t.Run("debug level forwards everything", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "clearance-api",
			LoggerProvider: enabledLogsProvider(t),
			Level:          zapcore.DebugLevel,
		})
		require.NotNil(t, core)

		assert.True(t, core.Enabled(zapcore.DebugLevel))
		assert.True(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("higher level wraps with the filter core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "clearance-api",
			LoggerProvider: enabledLogsProvider(t),
			Level:          zapcore.WarnLevel,
		})
		require.NotNil(t, core)

		_, filtered := core.(*levelFilterCore)
		assert.True(t, filtered)

		assert.False(t, core.Enabled(zapcore.DebugLevel))
		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestLevelFilterCore(t *testing.T) {
	t.Run("drops entries below the floor", func(t *testing.T) {
		observedCore, observedLogs := observer.New(zapcore.DebugLevel)
		filtered := &levelFilterCore{
			Core:     observedCore,
			minLevel: zapcore.WarnLevel,
		}

		logger := zap.New(filtered)
		logger.Debug("document parsed")
		logger.Info("document validated")
		logger.Warn("duty rate missing")
		logger.Error("reversal rejected")

		logs := observedLogs.All()
		require.Len(t, logs, 2)
		assert.Equal(t, "duty rate missing", logs[0].Message)
		assert.Equal(t, "reversal rejected", logs[1].Message)
	})

	t.Run("With preserves the floor and the fields", func(t *testing.T) {
		observedCore, observedLogs := observer.New(zapcore.DebugLevel)
		filtered := &levelFilterCore{
			Core:     observedCore,
			minLevel: zapcore.WarnLevel,
		}

		child := filtered.With([]zapcore.Field{zap.String("document_id", "doc-77")})
		childFiltered, ok := child.(*levelFilterCore)
		require.True(t, ok)
		assert.Equal(t, zapcore.WarnLevel, childFiltered.minLevel)

		zap.New(child).Warn("receipt out of sequence")

		logs := observedLogs.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Context, zap.String("document_id", "doc-77"))
	})
}

func TestNewBridgedLogger(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)

	logger := NewBridgedLogger(observedCore, zapcore.NewNopCore(), zap.AddCaller())

	logger.Info("clearance document submitted", zap.String("document_number", "26  48  3009  0001234"))
	logger.Debug("binding request body")
	logger.Warn("stock level below reorder point")

	logs := observedLogs.All()
	require.Len(t, logs, 2)

	assert.Equal(t, "clearance document submitted", logs[0].Message)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Contains(t, logs[0].Context, zap.String("document_number", "26  48  3009  0001234"))

	assert.Equal(t, "stock level below reorder point", logs[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}

func TestCreateBridgedLoggerFromConfig(t *testing.T) {
	logger, err := CreateBridgedLoggerFromConfig(&BaseLoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, disabledLogsProvider(t), "clearance-api")

	require.NoError(t, err)
	require.NotNil(t, logger)

	// OTEL side is a nop core here; the call just has to not blow up.
	logger.Info("reversal saga completed",
		zap.String("request_id", "req-123"),
		zap.String("document_id", "doc-42"),
		zap.Int("movements_reversed", 3),
	)
	_ = logger.Sync()
}

func TestDefaultBaseLoggerConfig(t *testing.T) {
	cfg := DefaultBaseLoggerConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, parseLogLevel(input), "level %q", input)
	}
}

func TestCreateLogEncoder(t *testing.T) {
	encode := func(format string) string {
		encoder := createLogEncoder(&BaseLoggerConfig{
			Format:     format,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		})
		require.NotNil(t, encoder)

		buf, err := encoder.EncodeEntry(zapcore.Entry{
			Level:   zapcore.InfoLevel,
			Message: "receipt completed",
		}, nil)
		require.NoError(t, err)
		return buf.String()
	}

	t.Run("json", func(t *testing.T) {
		out := encode("json")
		assert.Contains(t, out, `"level":"info"`)
		assert.Contains(t, out, `"msg":"receipt completed"`)
	})

	t.Run("console", func(t *testing.T) {
		out := encode("console")
		assert.NotContains(t, out, `"level"`)
		assert.Contains(t, out, "receipt completed")
	})
}

func TestCreateLogWriter(t *testing.T) {
	assert.NotNil(t, createLogWriter("stdout"))
	assert.NotNil(t, createLogWriter("stderr"))
	// Unknown sinks fall back to stdout rather than failing startup.
	assert.NotNil(t, createLogWriter("/var/log/clearance.log"))
}

func TestCreateBaseCore(t *testing.T) {
	core := createBaseCore(&BaseLoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	require.NotNil(t, core)

	assert.True(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}

func TestBridgedLoggerFieldEncoding(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)

	zap.New(core).Info("stock released",
		zap.String("location_code", "WH-TIJ"),
		zap.Int("quantity", 42),
		zap.Float64("duty_amount", 317.5),
		zap.Bool("reversible", true),
		zap.Strings("movement_ids", []string{"mv-1", "mv-2"}),
	)

	out := buf.String()
	assert.Contains(t, out, `"location_code":"WH-TIJ"`)
	assert.Contains(t, out, `"quantity":42`)
	assert.True(t, strings.Contains(out, `"duty_amount":317.5`))
	assert.Contains(t, out, `"reversible":true`)
	assert.Contains(t, out, `"movement_ids":["mv-1","mv-2"]`)
}
