package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
)

// =============================================================================
// Cache Interface
// =============================================================================

// Cache defines the interface for caching operations.
// Implemented in memory for single-node deployments and with Redis otherwise.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// DeleteMulti removes multiple values.
	DeleteMulti(ctx context.Context, keys ...string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// Product returns a cache key for a product by ID.
func (CacheKey) Product(id int64) string {
	return "cache:product:" + strconv.FormatInt(id, 10)
}

// =============================================================================
// Cached Product Repository
// =============================================================================

// Cache result labels passed to the observer.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CachedProductRepository is a read-through cache in front of a ProductRepository.
// GetByID is served from the cache; writes go to the inner repository and
// invalidate the cached entry.
type CachedProductRepository struct {
	ProductRepository

	cache   Cache
	ttl     time.Duration
	logger  zerolog.Logger
	observe func(result string)
}

// NewCachedProductRepository wraps inner with cache. observe may be nil.
func NewCachedProductRepository(inner ProductRepository, cache Cache, ttl time.Duration, logger zerolog.Logger, observe func(result string)) *CachedProductRepository {
	if observe == nil {
		observe = func(string) {}
	}
	return &CachedProductRepository{
		ProductRepository: inner,
		cache:             cache,
		ttl:               ttl,
		logger:            logger.With().Str("component", "product_cache").Logger(),
		observe:           observe,
	}
}

// GetByID returns the cached product or loads and caches it.
func (r *CachedProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := CacheKey{}.Product(id)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var product domain.Product
		if jsonErr := json.Unmarshal(data, &product); jsonErr == nil {
			r.observe(CacheHit)
			return &product, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		_ = r.cache.Delete(ctx, key)
	case errors.Is(err, ErrCacheMiss):
	default:
		r.observe(CacheError)
		r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	product, err := r.ProductRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.observe(CacheMiss)

	if encoded, err := json.Marshal(product); err == nil {
		if err := r.cache.Set(ctx, key, encoded, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	return product, nil
}

// Update updates the product and invalidates its cache entry.
func (r *CachedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

// Delete deletes the product and invalidates its cache entry.
func (r *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id int64) {
	key := CacheKey{}.Product(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

var _ ProductRepository = (*CachedProductRepository)(nil)
