package config

import (
	"fmt"

	pkgconfig "github.com/Antony-QP/React-Ecommerce-Backend/pkg/config"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Token verification modes.
const (
	AuthJWT        = "jwt"
	AuthIntrospect = "introspect"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CATALOG_HTTP_PORT" envDefault:"8000"`

	// Document store
	StoreBackend   string `env:"STORE_BACKEND" envDefault:"mongo"`
	MongoURI       string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase  string `env:"MONGO_DB" envDefault:"ecommerce"`
	MongoMinPool   uint64 `env:"MONGO_MIN_POOL_SIZE" envDefault:"2"`
	MongoMaxPool   uint64 `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`
	StoreTimeoutMs int    `env:"STORE_TIMEOUT_MS" envDefault:"5000"`

	// Admin account registered at startup with the memory backend
	MemoryAdminEmail string `env:"MEMORY_ADMIN_EMAIL"`

	// Search result cache
	CacheEnabled    bool   `env:"CACHE_ENABLED" envDefault:"false"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass       string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	// Kafka. Empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Authentication
	AuthMode          string `env:"AUTH_MODE" envDefault:"jwt"`
	JWTSecret         string `env:"JWT_SECRET"`
	JWTIssuer         string `env:"JWT_ISSUER" envDefault:""`
	AuthIntrospectURL string `env:"AUTH_INTROSPECT_URL"`

	// Page-size policies
	SearchDefaultLimit int `env:"SEARCH_DEFAULT_LIMIT" envDefault:"12"`
	SearchMaxLimit     int `env:"SEARCH_MAX_LIMIT" envDefault:"100"`
	ListPerPage        int `env:"LIST_PER_PAGE" envDefault:"3"`

	// Per-client rate limit on the filter endpoint; 0 disables it
	SearchRateLimitRPS   float64 `env:"SEARCH_RATE_LIMIT_RPS" envDefault:"20"`
	SearchRateLimitBurst int     `env:"SEARCH_RATE_LIMIT_BURST" envDefault:"40"`

	// HTTP caching of public GETs, in seconds
	CacheMaxAge int `env:"HTTP_CACHE_MAX_AGE" envDefault:"30"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.StoreBackend {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DB is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreBackend)
	}
	if c.StoreTimeoutMs < 1 {
		return fmt.Errorf("STORE_TIMEOUT_MS must be positive, got %d", c.StoreTimeoutMs)
	}

	switch c.AuthMode {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=%s", AuthJWT)
		}
	case AuthIntrospect:
		if c.AuthIntrospectURL == "" {
			return fmt.Errorf("AUTH_INTROSPECT_URL is required when AUTH_MODE=%s", AuthIntrospect)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthJWT, AuthIntrospect, c.AuthMode)
	}

	if c.CacheEnabled && c.CacheTTLSeconds < 1 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.SearchDefaultLimit < 1 || c.SearchDefaultLimit > c.SearchMaxLimit {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and SEARCH_MAX_LIMIT (%d), got %d",
			c.SearchMaxLimit, c.SearchDefaultLimit)
	}
	if c.ListPerPage < 1 || c.ListPerPage > c.SearchMaxLimit {
		return fmt.Errorf("LIST_PER_PAGE must be between 1 and %d, got %d", c.SearchMaxLimit, c.ListPerPage)
	}
	if c.SearchRateLimitRPS < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must not be negative, got %f", c.SearchRateLimitRPS)
	}
	if c.SearchRateLimitRPS > 0 && c.SearchRateLimitBurst < 1 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_BURST must be positive, got %d", c.SearchRateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
