// Package catalog is the cache-aside consistency layer of the product service.
//
// Reads of the full list and of single products probe the cache first and fall
// back to the record store, repopulating the cache on the way out. Writes go to
// the store first and only then drop the cache keys they made stale. Category
// listings and stats always read the store and never touch the cache.
//
// Cache trouble of any kind (absent key, undecodable blob, unreachable Redis)
// is handled here and never reaches the caller. Store trouble always does.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/cache"
	"gitlab.connectwisedev.com/catalog-service/pkg/database"
	"gitlab.connectwisedev.com/catalog-service/pkg/metrics"
)

const (
	resourceCollection = "collection"
	resourceProduct    = "product"
)

// RecordStore is the durable backend. *database.ProductStore implements it.
type RecordStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, np models.NewProduct) (models.Product, error)
	AdjustStock(ctx context.Context, id, delta int64) (models.Product, error)
	Stats(ctx context.Context) (models.Stats, error)
	Ping(ctx context.Context) error
}

// Options tunes the cache policy.
type Options struct {
	ListTTL           time.Duration
	ProductTTL        time.Duration
	InvalidateTimeout time.Duration
}

// DefaultOptions returns the standard TTLs: 60s for the list, 300s per product.
func DefaultOptions() Options {
	return Options{
		ListTTL:           60 * time.Second,
		ProductTTL:        300 * time.Second,
		InvalidateTimeout: 2 * time.Second,
	}
}

// Service implements the catalog operations.
type Service struct {
	store    RecordStore
	cache    cache.Cache
	logger   *zap.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	validate *validator.Validate
	opts     Options
}

// NewService wires the catalog over its process-scoped handles.
func NewService(store RecordStore, c cache.Cache, logger *zap.Logger, m *metrics.Collector, opts Options) *Service {
	def := DefaultOptions()
	if opts.ListTTL <= 0 {
		opts.ListTTL = def.ListTTL
	}
	if opts.ProductTTL <= 0 {
		opts.ProductTTL = def.ProductTTL
	}
	if opts.InvalidateTimeout <= 0 {
		opts.InvalidateTimeout = def.InvalidateTimeout
	}
	return &Service{
		store:    store,
		cache:    c,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("gitlab.connectwisedev.com/catalog-service/pkg/catalog"),
		validate: newValidator(),
		opts:     opts,
	}
}

// readThrough runs the cache-aside protocol for one key.
// Concurrent misses on the same key each query the store and rewrite the entry;
// they observe the same store state, so the duplicate writes are harmless.
func readThrough[T any](
	ctx context.Context,
	s *Service,
	resource, key string,
	ttl time.Duration,
	decode func([]byte) (T, error),
	encode func(T) ([]byte, error),
	fetch func(context.Context) (T, error),
) (T, models.Origin, error) {
	log := s.logger.With(zap.String("key", key))

	blob, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		v, decErr := decode(blob)
		if decErr == nil {
			s.metrics.CacheHits.WithLabelValues(resource).Inc()
			log.Debug("cache hit")
			return v, models.OriginCache, nil
		}
		log.Warn("discarding undecodable cache entry", zap.Error(decErr))
		s.metrics.CacheMisses.WithLabelValues(resource, "corrupt").Inc()
	case errors.Is(err, cache.ErrMiss):
		s.metrics.CacheMisses.WithLabelValues(resource, "absent").Inc()
	default:
		log.Warn("cache read failed, falling back to database", zap.Error(err))
		s.metrics.CacheErrors.WithLabelValues("get").Inc()
		s.metrics.CacheMisses.WithLabelValues(resource, "error").Inc()
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, "", err
	}

	if blob, encErr := encode(v); encErr != nil {
		log.Error("failed to encode value for cache", zap.Error(encErr))
	} else if setErr := s.cache.Set(ctx, key, blob, ttl); setErr != nil {
		log.Warn("cache write failed", zap.Error(setErr))
		s.metrics.CacheErrors.WithLabelValues("set").Inc()
	} else {
		log.Debug("cache populated", zap.Duration("ttl", ttl))
	}
	return v, models.OriginDatabase, nil
}

// ListProducts returns every product, from cache when possible.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, models.Origin, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListProducts")
	defer span.End()

	products, origin, err := readThrough(ctx, s, resourceCollection, cache.CollectionKey(), s.opts.ListTTL,
		DecodeProducts, EncodeProducts,
		func(ctx context.Context) ([]models.Product, error) {
			products, err := observe(s, "list_products", func() ([]models.Product, error) {
				return s.store.ListProducts(ctx)
			})
			if err != nil {
				s.logger.Error("failed to list products", zap.Error(err))
				return nil, NewStore("failed to retrieve products", err)
			}
			return products, nil
		})
	return products, origin, s.finish(span, origin, err)
}

// GetProduct returns the product with id, from cache when possible.
// A missing product is never cached.
func (s *Service) GetProduct(ctx context.Context, id int64) (models.Product, models.Origin, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if id <= 0 {
		return models.Product{}, "", s.finish(span, "", NewNotFound("product not found"))
	}

	p, origin, err := readThrough(ctx, s, resourceProduct, cache.ProductKey(id), s.opts.ProductTTL,
		DecodeProduct, EncodeProduct,
		func(ctx context.Context) (models.Product, error) {
			p, err := observe(s, "get_product", func() (models.Product, error) {
				return s.store.GetProduct(ctx, id)
			})
			if errors.Is(err, database.ErrNotFound) {
				return models.Product{}, NewNotFound("product not found")
			}
			if err != nil {
				s.logger.Error("failed to get product", zap.Int64("product_id", id), zap.Error(err))
				return models.Product{}, NewStore("failed to retrieve product", err)
			}
			return p, nil
		})
	return p, origin, s.finish(span, origin, err)
}

// ListByCategory reads the store directly; category results are never cached.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListByCategory", trace.WithAttributes(attribute.String("product.category", category)))
	defer span.End()

	products, err := observe(s, "list_by_category", func() ([]models.Product, error) {
		return s.store.ListProductsByCategory(ctx, category)
	})
	if err != nil {
		s.logger.Error("failed to list products by category", zap.String("category", category), zap.Error(err))
		return nil, s.finish(span, models.OriginDatabase, NewStore("failed to retrieve products", err))
	}
	return products, s.finish(span, models.OriginDatabase, nil)
}

// CreateProduct validates np, persists it, then drops the cached list.
// The new product's own key stays empty until its first read.
func (s *Service) CreateProduct(ctx context.Context, np models.NewProduct) (models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateProduct")
	defer span.End()

	if err := s.validateNewProduct(np); err != nil {
		return models.Product{}, s.finish(span, "", err)
	}

	p, err := observe(s, "create_product", func() (models.Product, error) {
		return s.store.CreateProduct(ctx, np)
	})
	if err != nil {
		s.logger.Error("failed to create product", zap.String("name", np.Name), zap.Error(err))
		return models.Product{}, s.finish(span, "", NewStore("failed to create product", err))
	}
	span.SetAttributes(attribute.Int64("product.id", p.ID))

	s.invalidate(ctx, "create_product", cache.CollectionKey())
	return p, s.finish(span, "", nil)
}

// AdjustStock applies a signed delta to the product's stock, then drops both the
// cached list and the product's own entry. A delta that would take stock below
// zero is rejected and nothing is written.
func (s *Service) AdjustStock(ctx context.Context, id, delta int64) (models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.AdjustStock", trace.WithAttributes(
		attribute.Int64("product.id", id),
		attribute.Int64("stock.delta", delta),
	))
	defer span.End()

	if id <= 0 {
		return models.Product{}, s.finish(span, "", NewNotFound("product not found"))
	}

	p, err := observe(s, "adjust_stock", func() (models.Product, error) {
		return s.store.AdjustStock(ctx, id, delta)
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		return models.Product{}, s.finish(span, "", NewNotFound("product not found"))
	case errors.Is(err, database.ErrInsufficientStock):
		return models.Product{}, s.finish(span, "", NewValidation("insufficient stock"))
	case errors.Is(err, database.ErrStockOutOfRange):
		return models.Product{}, s.finish(span, "", NewValidation("quantity out of range"))
	case err != nil:
		s.logger.Error("failed to update stock", zap.Int64("product_id", id), zap.Int64("delta", delta), zap.Error(err))
		return models.Product{}, s.finish(span, "", NewStore("failed to update stock", err))
	}

	s.invalidate(ctx, "adjust_stock", cache.CollectionKey(), cache.ProductKey(id))
	return p, s.finish(span, "", nil)
}

// Stats aggregates catalog totals straight from the store.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Stats")
	defer span.End()

	st, err := observe(s, "stats", func() (models.Stats, error) {
		return s.store.Stats(ctx)
	})
	if err != nil {
		s.logger.Error("failed to fetch stats", zap.Error(err))
		return models.Stats{}, s.finish(span, "", NewStore("failed to retrieve stats", err))
	}
	return st, s.finish(span, "", nil)
}

// Health reports reachability of both backends.
type Health struct {
	Database bool
	Cache    bool
}

// Healthy is false only when the store is down; a dead cache degrades, not fails.
func (h Health) Healthy() bool { return h.Database }

// Health pings the store and the cache.
func (s *Service) Health(ctx context.Context) Health {
	var h Health
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
	} else {
		h.Database = true
	}
	if err := s.cache.Ping(ctx); err != nil {
		s.logger.Warn("cache ping failed", zap.Error(err))
	} else {
		h.Cache = true
	}
	return h
}

// invalidate drops keys after a durable write. It runs detached from the
// caller's cancellation so a disconnecting client cannot skip it, and its
// failure is logged and swallowed: entries then age out by TTL.
func (s *Service) invalidate(ctx context.Context, op string, keys ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.InvalidateTimeout)
	defer cancel()

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed, entries will expire by TTL",
			zap.String("operation", op),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
		s.metrics.CacheErrors.WithLabelValues("delete").Inc()
		s.metrics.Invalidations.WithLabelValues("failed").Inc()
		return
	}
	s.metrics.Invalidations.WithLabelValues("ok").Inc()
	s.logger.Debug("cache invalidated", zap.String("operation", op), zap.Strings("keys", keys))
}

// observe times a store call and counts its outcome. A not-found answer is a
// successful round trip, not a store failure.
func observe[T any](s *Service, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	s.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	status := "ok"
	switch {
	case err == nil, errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrInsufficientStock), errors.Is(err, database.ErrStockOutOfRange):
	default:
		status = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	return v, err
}

func (s *Service) finish(span trace.Span, origin models.Origin, err error) error {
	if origin != "" {
		span.SetAttributes(attribute.String("catalog.origin", string(origin)))
	}
	if err != nil {
		span.RecordError(err)
		if IsStore(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}
