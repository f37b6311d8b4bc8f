package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	Redis     RedisConfig
	Assets    AssetsConfig
	Invoice   InvoiceConfig
	RateLimit RateLimitConfig

	// LayoutFile pins the layout YAML; empty searches the default paths.
	LayoutFile string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// AssetsConfig names the resources every invoice needs. A ref is an http(s)
// URL, a file:// URL or a path relative to Root. Empty template refs use the
// built-in templates, empty font refs use the core Helvetica font.
type AssetsConfig struct {
	Root           string
	HeaderTemplate string
	FooterTemplate string
	FontRegular    string
	FontMedium     string
	FontSemiBold   string
	FontBold       string
	FontSymbol     string

	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

type InvoiceConfig struct {
	NumberTemplate string
	Author         string
	NodeID         int64
}

type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
	LockTTL time.Duration
}

const DefaultNumberTemplate = "INV/{YYYY}{MM}{DD}/{SEQ4}"

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:      getenv("APP_SERVICE", "bingkai"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		Assets: AssetsConfig{
			Root:           getenv("ASSETS_ROOT", "assets"),
			HeaderTemplate: strings.TrimSpace(getenv("ASSETS_HEADER_TEMPLATE", "")),
			FooterTemplate: strings.TrimSpace(getenv("ASSETS_FOOTER_TEMPLATE", "")),
			FontRegular:    strings.TrimSpace(getenv("ASSETS_FONT_REGULAR", "")),
			FontMedium:     strings.TrimSpace(getenv("ASSETS_FONT_MEDIUM", "")),
			FontSemiBold:   strings.TrimSpace(getenv("ASSETS_FONT_SEMIBOLD", "")),
			FontBold:       strings.TrimSpace(getenv("ASSETS_FONT_BOLD", "")),
			FontSymbol:     strings.TrimSpace(getenv("ASSETS_FONT_SYMBOL", "")),
			HTTPTimeout:    getenvDuration("ASSETS_HTTP_TIMEOUT", 10*time.Second),
			CacheTTL:       getenvDuration("ASSETS_CACHE_TTL", time.Hour),
		},
		Invoice: InvoiceConfig{
			NumberTemplate: getenv("INVOICE_NUMBER_TEMPLATE", DefaultNumberTemplate),
			Author:         getenv("INVOICE_AUTHOR", "Bingkai"),
			NodeID:         getenvInt64("SNOWFLAKE_NODE", 1),
		},
		RateLimit: RateLimitConfig{
			Enabled: getenvBool("RATE_LIMIT_ENABLED", true),
			Rate:    getenvFloat("RATE_LIMIT_RATE", 1),
			Burst:   int(getenvInt64("RATE_LIMIT_BURST", 5)),
			LockTTL: getenvDuration("RATE_LIMIT_LOCK_TTL", 30*time.Second),
		},
		LayoutFile: strings.TrimSpace(getenv("LAYOUT_FILE", "")),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("15s") or whole seconds ("15").
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
