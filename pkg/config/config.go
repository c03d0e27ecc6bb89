package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Orphadata OrphadataConfig
	Cache     CacheConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string
	Level string
}

// OrphadataConfig holds the rare-disease reference service configuration
type OrphadataConfig struct {
	BaseURL      string
	Timeout      time.Duration
	DefaultLang  string
	LoadAttempts int
}

// CacheConfig selects the cache backend used by the disease resolver
type CacheConfig struct {
	Backend string // memory or redis
	TTL     time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds the per-client limiter settings
type RateLimitConfig struct {
	PerMinute  int
	Burst      int
	TrustProxy bool
	IdleTTL    time.Duration
}

// CORSConfig holds allowed origins
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 3001),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Orphadata: OrphadataConfig{
			BaseURL:      getEnv("ORPHADATA_API_URL", "https://api.orphadata.com"),
			Timeout:      getEnvAsDuration("ORPHADATA_TIMEOUT", 10*time.Second),
			DefaultLang:  getEnv("ORPHADATA_DEFAULT_LANG", "en"),
			LoadAttempts: getEnvAsInt("ORPHADATA_LOAD_ATTEMPTS", 3),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
			TTL:     getEnvAsDuration("CACHE_TTL", time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			PerMinute:  getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			Burst:      getEnvAsInt("RATE_LIMIT_BURST", 100),
			TrustProxy: getEnvAsBool("RATE_LIMIT_TRUST_PROXY", false),
			IdleTTL:    getEnvAsDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "rare-disease-guide"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Cache.Backend != CacheBackendMemory && c.Cache.Backend != CacheBackendRedis {
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Orphadata.BaseURL == "" {
		return fmt.Errorf("ORPHADATA_API_URL is required")
	}
	if c.Orphadata.LoadAttempts < 1 {
		c.Orphadata.LoadAttempts = 1
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
