// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every knob the service reads from its environment.
// Values come from defaults, then the optional YAML file named by CONFIG_FILE,
// then environment variables; later sources win.
type Config struct {
	AppEnv      string `yaml:"app_env"`
	ServiceName string `yaml:"service_name"`
	HTTPAddr    string `yaml:"http_addr"`
	LogLevel    string `yaml:"log_level"`
	ConfigFile  string `yaml:"-"`

	DBHost            string        `yaml:"db_host"`
	DBPort            string        `yaml:"db_port"`
	DBUser            string        `yaml:"db_user"`
	DBPassword        string        `yaml:"db_password"`
	DBName            string        `yaml:"db_name"`
	DBSSLMode         string        `yaml:"db_sslmode"`
	DBMaxOpenConns    int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime"`

	CacheBackend  string `yaml:"cache_backend"` // "redis" or "memory"
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	ListTTL    time.Duration `yaml:"cache_list_ttl"`
	ProductTTL time.Duration `yaml:"cache_product_ttl"`

	OTLPEndpoint    string        `yaml:"otlp_endpoint"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, def time.Duration) time.Duration {
	sec := atoienv(key, -1)
	if sec < 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		AppEnv:      "development",
		ServiceName: "product-service",
		HTTPAddr:    ":3000",
		LogLevel:    "info",

		DBHost:            "postgres",
		DBPort:            "5432",
		DBUser:            "labuser",
		DBPassword:        "labpass",
		DBName:            "labdb",
		DBSSLMode:         "disable",
		DBMaxOpenConns:    25,
		DBMaxIdleConns:    25,
		DBConnMaxLifetime: 5 * time.Minute,

		CacheBackend: "redis",
		RedisAddr:    "redis:6379",

		ListTTL:    60 * time.Second,
		ProductTTL: 300 * time.Second,

		ShutdownTimeout: 15 * time.Second,
	}
}

// FromEnv overlays environment variables on base.
func FromEnv(base Config) Config {
	return Config{
		AppEnv:      getenv("APP_ENV", base.AppEnv),
		ServiceName: getenv("SERVICE_NAME", base.ServiceName),
		HTTPAddr:    getenv("HTTP_ADDR", base.HTTPAddr),
		LogLevel:    getenv("LOG_LEVEL", base.LogLevel),
		ConfigFile:  base.ConfigFile,

		DBHost:            getenv("DB_HOST", base.DBHost),
		DBPort:            getenv("DB_PORT", base.DBPort),
		DBUser:            getenv("DB_USER", base.DBUser),
		DBPassword:        getenv("DB_PASSWORD", base.DBPassword),
		DBName:            getenv("DB_NAME", base.DBName),
		DBSSLMode:         getenv("DB_SSLMODE", base.DBSSLMode),
		DBMaxOpenConns:    atoienv("DB_MAX_OPEN_CONNS", base.DBMaxOpenConns),
		DBMaxIdleConns:    atoienv("DB_MAX_IDLE_CONNS", base.DBMaxIdleConns),
		DBConnMaxLifetime: durenvs("DB_CONN_MAX_LIFETIME_SEC", base.DBConnMaxLifetime),

		CacheBackend:  getenv("CACHE_BACKEND", base.CacheBackend),
		RedisAddr:     getenv("REDIS_ADDR", base.RedisAddr),
		RedisPassword: getenv("REDIS_PASSWORD", base.RedisPassword),
		RedisDB:       atoienv("REDIS_DB", base.RedisDB),

		ListTTL:    durenvs("CACHE_LIST_TTL_SEC", base.ListTTL),
		ProductTTL: durenvs("CACHE_PRODUCT_TTL_SEC", base.ProductTTL),

		OTLPEndpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", base.OTLPEndpoint),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", base.ShutdownTimeout),
	}
}

// Load collects configuration from defaults, CONFIG_FILE and the environment.
func Load() (Config, error) {
	base := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if base, err = ReadFile(path, base); err != nil {
			return Config{}, err
		}
	}
	return FromEnv(base), nil
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsLocal reports whether the service runs on a developer machine.
func (c Config) IsLocal() bool {
	return c.AppEnv == "local" || c.AppEnv == "development"
}
