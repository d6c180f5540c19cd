package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newRecordingProvider installs a provider that keeps spans in memory
func newRecordingProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	previous := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProvider(Config{Enabled: true, ServiceName: "test", SamplingRatio: 1},
		sdktrace.WithSyncer(exporter), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return exporter
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(&config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "marvel-store",
		Insecure:          true,
		MetricsInterval:   30 * time.Second,
	})

	assert.Equal(t, Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "marvel-store",
		Insecure:          true,
		MetricsInterval:   30 * time.Second,
	}, cfg)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStartServiceSpan(t *testing.T) {
	exporter := newRecordingProvider(t)
	orderID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "order", "create",
		SpanAttrOrderID, orderID,
		SpanAttrItemCount, 3,
		42, "skipped",
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("out of stock"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "order.create", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, orderID.String(), attrs[SpanAttrOrderID])
	assert.Equal(t, "3", attrs[SpanAttrItemCount])
	assert.Len(t, attrs, 2)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestRegisterDBTracing(t *testing.T) {
	exporter := newRecordingProvider(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := DefaultDBTracingConfig()
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	assert.Empty(t, exporter.GetSpans(), "disabled tracing registers nothing")

	cfg.Enabled = true
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	var n int
	require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, exporter.GetSpans())
}
