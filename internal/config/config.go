// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	Directory   DirectoryConfig
	JWT         JWTConfig
	Licensing   LicensingConfig
	Catalog     CatalogConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
	RateLimit   RateLimitConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

// DirectoryConfig points at the external user directory (a WordPress
// database). It is only ever read.
type DirectoryConfig struct {
	DatabaseConfig
	Driver      string // mysql or postgres
	TablePrefix string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type LicensingConfig struct {
	BaseURL          string
	Timeout          time.Duration
	PrivilegedBypass bool
	BindAttempts     int
}

type CatalogConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis server was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type MetricsConfig struct {
	Enabled bool
}

type RateLimitConfig struct {
	ActivationsPerMinute int
	ActivationBurst      int
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASS", ""),
			Database:     getEnv("DB_NAME", "licenses"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Directory: DirectoryConfig{
			DatabaseConfig: DatabaseConfig{
				Host:         getEnv("WP_DB_HOST", "localhost"),
				Port:         getEnv("WP_DB_PORT", "3306"),
				User:         getEnv("WP_DB_USER", "wordpress"),
				Password:     getEnv("WP_DB_PASS", ""),
				Database:     getEnv("WP_DB_NAME", "wordpress"),
				SSLMode:      getEnv("WP_DB_SSL_MODE", "disable"),
				MaxOpenConns: getEnvAsInt("WP_DB_MAX_OPEN_CONNS", 10),
				MaxIdleConns: getEnvAsInt("WP_DB_MAX_IDLE_CONNS", 5),
				MaxLifetime:  getEnvAsInt("WP_DB_MAX_LIFETIME", 300),
				LogLevel:     getEnv("WP_DB_LOG_LEVEL", "silent"),
			},
			Driver:      getEnv("WP_DB_DRIVER", "mysql"),
			TablePrefix: getEnv("WP_TABLE_PREFIX", "wp_"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 1 day
		},
		Licensing: LicensingConfig{
			BaseURL:          strings.TrimRight(getEnv("LICENSE_URL", ""), "/"),
			Timeout:          getEnvAsDuration("LICENSE_TIMEOUT", 10*time.Second),
			PrivilegedBypass: getEnvAsBool("LICENSE_PRIVILEGED_BYPASS", true),
			BindAttempts:     getEnvAsInt("LICENSE_BIND_ATTEMPTS", 3),
		},
		Catalog: CatalogConfig{
			BaseURL:  strings.TrimRight(getEnv("WOOCOMMERCE_API_URL", ""), "/"),
			APIToken: getEnv("WOOCOMMERCE_JWT", ""),
			Timeout:  getEnvAsDuration("WOOCOMMERCE_TIMEOUT", 10*time.Second),
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			ActivationsPerMinute: getEnvAsInt("ACTIVATION_RATE_PER_MINUTE", 30),
			ActivationBurst:      getEnvAsInt("ACTIVATION_RATE_BURST", 10),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Licensing.BindAttempts < 1 {
		return fmt.Errorf("LICENSE_BIND_ATTEMPTS must be at least 1")
	}

	if c.Licensing.Timeout <= 0 {
		return fmt.Errorf("LICENSE_TIMEOUT must be positive")
	}

	if c.Directory.Driver != "mysql" && c.Directory.Driver != "postgres" {
		return fmt.Errorf("WP_DB_DRIVER must be mysql or postgres")
	}

	if c.Environment != "production" {
		return nil
	}

	if c.JWT.SecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Licensing.BaseURL == "" {
		return fmt.Errorf("LICENSE_URL is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
