package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "HTTP_ADDR", "DB_HOST", "DB_MAX_OPEN_CONNS", "DB_CONN_MAX_LIFETIME_SEC",
		"CACHE_BACKEND", "REDIS_ADDR", "CACHE_LIST_TTL_SEC", "CACHE_PRODUCT_TTL_SEC", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("CONFIG_FILE", "")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", c.AppEnv)
	assert.Equal(t, ":3000", c.HTTPAddr)
	assert.Equal(t, "postgres", c.DBHost)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, c.DBConnMaxLifetime)
	assert.Equal(t, "redis", c.CacheBackend)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 60*time.Second, c.ListTTL)
	assert.Equal(t, 300*time.Second, c.ProductTTL)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.True(t, c.IsLocal())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_LIST_TTL_SEC", "5")
	t.Setenv("CACHE_PRODUCT_TTL_SEC", "not-a-number")
	t.Setenv("CONFIG_FILE", "")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 10, c.DBMaxOpenConns)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, 5*time.Second, c.ListTTL)
	assert.Equal(t, 300*time.Second, c.ProductTTL, "unparsable values keep the default")
	assert.False(t, c.IsLocal())
}

func TestDSN(t *testing.T) {
	c := Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", c.DSN())
}

func TestLoadFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":8080"
log_level: debug
cache_backend: memory
cache_list_ttl: 90s
db_max_open_conns: 4
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7000")
	for _, k := range []string{"LOG_LEVEL", "CACHE_BACKEND", "CACHE_LIST_TTL_SEC", "DB_MAX_OPEN_CONNS", "CACHE_PRODUCT_TTL_SEC"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, c.ConfigFile)
	assert.Equal(t, ":7000", c.HTTPAddr, "environment wins over the file")
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, 90*time.Second, c.ListTTL)
	assert.Equal(t, 300*time.Second, c.ProductTTL)
	assert.Equal(t, 4, c.DBMaxOpenConns)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"), Defaults())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl: 5s\n"), 0o600))
	_, err = ReadFile(path, Defaults())
	assert.ErrorContains(t, err, "failed to parse config file")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	c, err := ReadFile(empty, Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults().HTTPAddr, c.HTTPAddr)
}
