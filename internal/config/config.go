// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Exodus    ExodusConfig    `mapstructure:"exodus"`
	Query     QueryConfig     `mapstructure:"query"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	Version     string `mapstructure:"version"`
}

// ExodusConfig holds the market data API settings.
type ExodusConfig struct {
	PricingURL  string `mapstructure:"pricing_url"`
	ExchangeURL string `mapstructure:"exchange_url"`
	// RequestTimeout bounds each HTTP call; zero blocks until the server answers.
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CircuitBreaker    bool          `mapstructure:"circuit_breaker"`
}

// QueryConfig holds query defaults.
type QueryConfig struct {
	Currency      string        `mapstructure:"currency"`
	HoldingsPath  string        `mapstructure:"holdings_path"`
	MaxDepth      int           `mapstructure:"max_depth"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	// Universe overrides the built-in symbol list when non-empty.
	Universe []string `mapstructure:"universe"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	Prometheus     bool   `mapstructure:"prometheus"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	OTLPMetrics    bool   `mapstructure:"otlp_metrics"`
}

// HealthConfig holds the watch-mode health endpoint settings.
type HealthConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Port        int           `mapstructure:"port"`
	MaxSnapshot time.Duration `mapstructure:"max_snapshot_age"`
}

// Load reads .env, an optional YAML file and CQ_* environment variables.
func Load(configPath string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Query.Currency = strings.ToUpper(strings.TrimSpace(cfg.Query.Currency))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.log_level", "CQ_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.environment", "CQ_ENVIRONMENT", "ENVIRONMENT")

	// Exodus
	v.BindEnv("exodus.pricing_url", "CQ_PRICING_URL")
	v.BindEnv("exodus.exchange_url", "CQ_EXCHANGE_URL")
	v.BindEnv("exodus.request_timeout", "CQ_REQUEST_TIMEOUT")

	// Query
	v.BindEnv("query.currency", "CQ_CURRENCY")
	v.BindEnv("query.holdings_path", "CQ_HOLDINGS")

	// Telemetry
	v.BindEnv("telemetry.service_name", "CQ_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "CQ_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "CQ_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "CQ_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "cryptoquery")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "warn")
	v.SetDefault("app.version", "dev")

	// Exodus defaults
	v.SetDefault("exodus.pricing_url", "https://pricing.a.exodus.io")
	v.SetDefault("exodus.exchange_url", "https://exchange.exodus.io")
	v.SetDefault("exodus.request_timeout", "30s")
	v.SetDefault("exodus.requests_per_minute", 0)
	v.SetDefault("exodus.circuit_breaker", true)

	// Query defaults
	v.SetDefault("query.currency", "GBP")
	v.SetDefault("query.holdings_path", "holdings.json")
	v.SetDefault("query.max_depth", 5)
	v.SetDefault("query.watch_interval", "2s")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "cryptoquery")
	v.SetDefault("telemetry.trace_provider", "none")
	v.SetDefault("telemetry.prometheus", false)
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.enabled", false)
	v.SetDefault("health.port", 8081)
	v.SetDefault("health.max_snapshot_age", "30s")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Exodus.PricingURL == "" {
		return fmt.Errorf("exodus.pricing_url is required")
	}
	if c.Exodus.ExchangeURL == "" {
		return fmt.Errorf("exodus.exchange_url is required")
	}
	if c.Exodus.RequestTimeout < 0 {
		return fmt.Errorf("exodus.request_timeout cannot be negative")
	}
	if c.Query.Currency == "" {
		return fmt.Errorf("query.currency cannot be empty")
	}
	if c.Query.MaxDepth < 0 {
		return fmt.Errorf("query.max_depth cannot be negative: %d", c.Query.MaxDepth)
	}
	if c.Query.WatchInterval <= 0 {
		return fmt.Errorf("query.watch_interval must be positive")
	}
	if c.Telemetry.Prometheus && c.Telemetry.PrometheusPort <= 0 {
		return fmt.Errorf("telemetry.prometheus_port must be positive")
	}
	if c.Health.Enabled && c.Health.Port <= 0 {
		return fmt.Errorf("health.port must be positive")
	}
	return nil
}
