package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nelson-ong-97/trending-repos/internal/models"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache: miss")

// Cache is the minimal key-value contract the search cache relies on.
// Implementations must return ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on top of a Redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(addr, password string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedClient decorates a SearchClient with a best-effort read-through
// cache keyed by the exact query+sort+order triple. Cache failures degrade
// to a direct fetch; they are never surfaced as fetch failures.
type CachedClient struct {
	inner  SearchClient
	cache  Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedClient wraps inner with a search-response cache.
func NewCachedClient(inner SearchClient, cache Cache, ttl time.Duration, logger *logrus.Logger) *CachedClient {
	return &CachedClient{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Ready delegates the credential check to the wrapped client.
func (c *CachedClient) Ready() error {
	return c.inner.Ready()
}

// Search returns a cached response when one is present and fresh, otherwise
// fetches from the wrapped client and stores the result.
func (c *CachedClient) Search(ctx context.Context, query, sort, order string) (*SearchResponse, error) {
	key := fmt.Sprintf("github:search:%s:%s:%s", query, sort, order)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var cached SearchResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		c.logger.WithField("key", key).WithError(err).Warn("Discarding undecodable cached search response")
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.WithField("key", key).WithError(err).Warn("Search cache read failed, fetching directly")
	}

	result, err := c.inner.Search(ctx, query, sort, order)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.WithField("key", key).WithError(err).Warn("Search cache write failed")
		}
	}

	return result, nil
}

// TrendingCandidates fetches trending candidates through the cached search.
func (c *CachedClient) TrendingCandidates(ctx context.Context, timeRange models.TimeRange) ([]SearchRepository, error) {
	return fetchTrendingCandidates(ctx, c, timeRange)
}
