package observability

import (
	"testing"

	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")

	cfg := LoadConfig(config.Config{AppName: " ", Environment: "development", OTLPEndpoint: "collector:4317"})
	assert.Equal(t, "bingkai", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())

	cfg = LoadConfig(config.Config{AppName: "bingkai", Environment: "production"})
	assert.True(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
	assert.InDelta(t, 0.1, cfg.OtelSamplingRatio, 1e-9)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("DEPLOYMENT_ENV", "staging")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")

	cfg := LoadConfig(config.Config{Environment: "production"})
	assert.False(t, cfg.OtelEnabled)
	assert.InDelta(t, 0.5, cfg.OtelSamplingRatio, 1e-9)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug())
}
