package common

import (
	"time"

	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/logging"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache, the default backend.
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	if defaultExpiration <= 0 {
		defaultExpiration = cache.NoExpiration
	}
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	if duration <= 0 {
		duration = cache.NoExpiration
	}
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

func (cs *CacheService) Backend() string {
	return config.CacheMemory
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}

// NewCache builds the backend selected by cfg.CacheBackend. A Redis backend
// that cannot be reached falls back to memory.
func NewCache(cfg *config.Config) CacheInterface {
	if cfg.CacheBackend == config.CacheRedis {
		rc, err := NewRedisCacheService(NewRedisClient(cfg))
		if err == nil {
			return rc
		}
		logging.Warn("Redis cache unavailable, using in-memory cache", "error", err)
	}
	return NewCacheService(0, 10*time.Minute)
}
