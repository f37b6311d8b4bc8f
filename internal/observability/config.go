package observability

import (
	"strings"

	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/spf13/viper"
)

// Config is the observability slice of the service configuration.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig starts from the service config and lets the conventional
// OTEL_* and LOG_* variables override it. Tracing defaults to on in
// production only.
func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("deployment_env", cfg.Environment)
	v.SetDefault("service_version", cfg.AppVersion)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("otel_enabled", cfg.IsProduction())
	v.SetDefault("otel_exporter_otlp_endpoint", cfg.OTLPEndpoint)
	v.SetDefault("otel_exporter_otlp_protocol", "grpc")
	v.SetDefault("otel_sampling_ratio", 0.1)

	protocol := v.GetString("otel_exporter_otlp_traces_protocol")
	if strings.TrimSpace(protocol) == "" {
		protocol = v.GetString("otel_exporter_otlp_protocol")
	}

	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "bingkai"
	}

	return Config{
		ServiceName:          name,
		Environment:          strings.TrimSpace(v.GetString("deployment_env")),
		Version:              strings.TrimSpace(v.GetString("service_version")),
		LogLevel:             normalize(v.GetString("log_level")),
		LogFormat:            normalize(v.GetString("log_format")),
		OtelEnabled:          v.GetBool("otel_enabled"),
		OtelExporterEndpoint: strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
		OtelExporterProtocol: normalize(protocol),
		OtelSamplingRatio:    v.GetFloat64("otel_sampling_ratio"),
	}
}

// Debug enables verbose request logging and stack traces.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch normalize(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
