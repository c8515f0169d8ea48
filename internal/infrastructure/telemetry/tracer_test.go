package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"

	"github.com/estatebook/backend/internal/infrastructure/config"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&config.Config{
		App: config.AppConfig{Env: "staging"},
		Telemetry: config.TelemetryConfig{
			Enabled:           true,
			CollectorEndpoint: "otel:4317",
			SamplingRatio:     0.25,
			ServiceName:       "estatebook",
			Insecure:          true,
		},
	}, "1.4.0")

	assert.Equal(t, Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.25,
		ServiceName:       "estatebook",
		ServiceVersion:    "1.4.0",
		Environment:       "staging",
		Insecure:          true,
	}, cfg)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{ServiceName: "test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{0.0, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newSampler(tt.ratio).Description())
	}
}

func TestNewResource_DefaultsVersion(t *testing.T) {
	res, err := newResource(Config{ServiceName: "estatebook", Environment: "production"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "estatebook", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])
	assert.Equal(t, "production", attrs["deployment.environment.name"])
}
