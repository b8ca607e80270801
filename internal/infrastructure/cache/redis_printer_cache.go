package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

const defaultKeyPrefix = "labelprint:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisPrinterCache shares printer lists between processes through Redis.
// Redis errors are logged and treated as cache misses.
type RedisPrinterCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisPrinterCache connects to Redis and verifies the connection
func NewRedisPrinterCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisPrinterCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPrinterCacheWithClient(client, defaultKeyPrefix, ttl, logger), nil
}

// NewRedisPrinterCacheWithClient creates a cache on an existing client
func NewRedisPrinterCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisPrinterCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPrinterCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Get reads a cached list
func (c *RedisPrinterCache) Get(ctx context.Context, key string) ([]spooler.Printer, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("printer cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	printers, err := decodePrinters(data)
	if err != nil {
		c.logger.Warn("printer cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return printers, true
}

// Set writes a list with the cache TTL
func (c *RedisPrinterCache) Set(ctx context.Context, key string, printers []spooler.Printer) {
	if c.ttl <= 0 {
		return
	}
	data, err := encodePrinters(printers)
	if err != nil {
		c.logger.Warn("printer cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("printer cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisPrinterCache) Close() error {
	return c.client.Close()
}

func encodePrinters(printers []spooler.Printer) ([]byte, error) {
	if printers == nil {
		printers = []spooler.Printer{}
	}
	return json.Marshal(printers)
}

func decodePrinters(data []byte) ([]spooler.Printer, error) {
	printers := []spooler.Printer{}
	if err := json.Unmarshal(data, &printers); err != nil {
		return nil, err
	}
	return printers, nil
}

var _ spooler.PrinterCache = (*RedisPrinterCache)(nil)
