// Package app assembles the process-scoped resources every entry point shares.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/pkg/api"
	"gitlab.connectwisedev.com/catalog-service/pkg/cache"
	"gitlab.connectwisedev.com/catalog-service/pkg/catalog"
	"gitlab.connectwisedev.com/catalog-service/pkg/config"
	"gitlab.connectwisedev.com/catalog-service/pkg/database"
	"gitlab.connectwisedev.com/catalog-service/pkg/logging"
	"gitlab.connectwisedev.com/catalog-service/pkg/metrics"
	"gitlab.connectwisedev.com/catalog-service/pkg/tracing"
)

// Container owns the database pool, the cache client and the tracer. They are
// acquired once in NewContainer and released together by Close.
type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Metrics  *metrics.Collector
	Service  *catalog.Service
	Router   *api.Router

	db     *database.DBClient
	cache  cache.Cache
	tracer *tracing.Provider
}

// NewContainer builds every dependency from cfg. A database that cannot be
// reached is fatal; a cache that cannot be reached is only logged, since the
// catalog serves from the database without it.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	logger, level, err := logging.New(cfg.LogLevel, cfg.IsLocal())
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, LogLevel: level}

	c.tracer, err = tracing.Init(ctx, cfg.ServiceName, cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	c.db, err = database.NewPostgresClient(ctx, cfg.DSN(), database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger.Named("database"))
	if err != nil {
		_ = c.tracer.Shutdown(ctx)
		return nil, err
	}

	c.cache, err = newCache(ctx, cfg, logger.Named("cache"))
	if err != nil {
		_ = c.db.Close()
		_ = c.tracer.Shutdown(ctx)
		return nil, err
	}

	c.Metrics = metrics.NewCollector("catalog")
	c.Service = catalog.NewService(database.NewProductStore(c.db), c.cache, logger.Named("catalog"), c.Metrics, catalog.Options{
		ListTTL:    cfg.ListTTL,
		ProductTTL: cfg.ProductTTL,
	})
	c.Router = api.NewRouter(c.Service, c.Metrics, logger.Named("http"), cfg.ServiceName)

	logger.Info("container initialized",
		zap.String("environment", cfg.AppEnv),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("tracing", c.tracer.Enabled()),
	)
	return c, nil
}

func newCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "memory":
		logger.Info("using in-process cache")
		return cache.NewMemoryCache(), nil
	case "redis", "":
		opts := cache.DefaultRedisOptions(cfg.RedisAddr)
		opts.Password = cfg.RedisPassword
		opts.DB = cfg.RedisDB
		rc, err := cache.NewRedisCache(ctx, opts, logger)
		if rc == nil {
			return nil, err
		}
		if err != nil {
			logger.Warn("redis unavailable at startup, reads will fall back to the database", zap.Error(err))
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// WatchConfig applies log level changes from the config file until ctx is done.
// It is a no-op unless a config file is in use on a local environment.
func (c *Container) WatchConfig(ctx context.Context) error {
	if c.Config.ConfigFile == "" || !c.Config.IsLocal() {
		return nil
	}
	return config.Watch(ctx, c.Config.ConfigFile, c.Logger.Named("config"), func(next config.Config) {
		if err := logging.SetLevel(c.LogLevel, next.LogLevel); err != nil {
			c.Logger.Warn("ignoring log level from config file", zap.Error(err))
			return
		}
		c.Logger.Info("log level updated", zap.String("level", next.LogLevel))
	})
}

// Close releases the cache, the database pool and the tracer, then flushes the logger.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
