package cache

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// PrinterCache is a printer list cache that owns resources
type PrinterCache interface {
	spooler.PrinterCache
	io.Closer
}

// PrinterCacheFactory creates printer caches and idempotency stores, backed
// by Redis when enabled and by process memory otherwise
type PrinterCacheFactory struct {
	redisConfig RedisConfig
	useRedis    bool
	ttl         time.Duration
	logger      *zap.Logger
}

// PrinterCacheFactoryOption is a functional option for configuring the factory
type PrinterCacheFactoryOption func(*PrinterCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PrinterCacheFactoryOption {
	return func(f *PrinterCacheFactory) {
		f.logger = logger
	}
}

// WithRedis enables the Redis cache
func WithRedis(cfg RedisConfig) PrinterCacheFactoryOption {
	return func(f *PrinterCacheFactory) {
		f.redisConfig = cfg
		f.useRedis = true
	}
}

// NewPrinterCacheFactory creates a new factory
func NewPrinterCacheFactory(ttl time.Duration, opts ...PrinterCacheFactoryOption) *PrinterCacheFactory {
	f := &PrinterCacheFactory{
		ttl:    ttl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when enabled and reachable, otherwise the
// in-memory cache
func (f *PrinterCacheFactory) CreateCache() PrinterCache {
	if f.useRedis {
		c, err := NewRedisPrinterCache(f.redisConfig, f.ttl, f.logger)
		if err == nil {
			f.logger.Info("using Redis printer cache")
			return c
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory printer cache", zap.Error(err))
	}
	return NewInMemoryPrinterCache(f.ttl)
}

// CreateIdempotencyStore returns a Redis store when enabled and reachable,
// otherwise the in-memory store
func (f *PrinterCacheFactory) CreateIdempotencyStore() shared.IdempotencyStore {
	if f.useRedis {
		s, err := NewRedisIdempotencyStore(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis idempotency store")
			return s
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	return NewInMemoryIdempotencyStore()
}
