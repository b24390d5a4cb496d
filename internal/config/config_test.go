package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LICENSE_URL", "https://licensing.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://licensing.example.com", cfg.Licensing.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Licensing.Timeout)
	assert.True(t, cfg.Licensing.PrivilegedBypass)
	assert.Equal(t, 3, cfg.Licensing.BindAttempts)
	assert.Equal(t, "wp_", cfg.Directory.TablePrefix)
	assert.Equal(t, "mysql", cfg.Directory.Driver)
	assert.Equal(t, "3306", cfg.Directory.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LICENSE_TIMEOUT", "3")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("LICENSE_PRIVILEGED_BYPASS", "FALSE")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Licensing.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
	assert.False(t, cfg.Licensing.PrivilegedBypass)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: defaultJWTSecret},
		Database:    DatabaseConfig{Password: "secret"},
		Directory:   DirectoryConfig{Driver: "mysql"},
		Licensing:   LicensingConfig{BaseURL: "https://licensing", Timeout: time.Second, BindAttempts: 1},
	}
	assert.ErrorContains(t, cfg.Validate(), "JWT secret")

	cfg.JWT.SecretKey = "rotated"
	cfg.Licensing.BaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "LICENSE_URL")

	cfg.Licensing.BaseURL = "https://licensing"
	assert.NoError(t, cfg.Validate())
}

func TestValidateBindAttempts(t *testing.T) {
	cfg := &Config{Licensing: LicensingConfig{Timeout: time.Second}}
	assert.Error(t, cfg.Validate())
}

func TestValidateDirectoryDriver(t *testing.T) {
	cfg := &Config{
		Directory: DirectoryConfig{Driver: "sqlite"},
		Licensing: LicensingConfig{Timeout: time.Second, BindAttempts: 1},
	}
	assert.ErrorContains(t, cfg.Validate(), "WP_DB_DRIVER")

	cfg.Directory.Driver = "postgres"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "licenses", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=licenses sslmode=disable", d.DSN())
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{Host: "wp", Port: "3306", User: "u", Password: "p", Database: "wordpress"}
	assert.Equal(t, "u:p@tcp(wp:3306)/wordpress?charset=utf8mb4&parseTime=True&loc=UTC", d.MySQLDSN())
}
