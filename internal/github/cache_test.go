package github

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelson-ong-97/trending-repos/internal/models"
)

// memCache is an in-memory Cache with injectable failures.
type memCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

// countingClient is a SearchClient that records calls and serves a canned
// response.
type countingClient struct {
	readyErr error
	response *SearchResponse
	err      error
	calls    int
}

func (c *countingClient) Ready() error {
	return c.readyErr
}

func (c *countingClient) Search(ctx context.Context, query, sort, order string) (*SearchResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

func TestCachedClientReadyDelegates(t *testing.T) {
	inner := &countingClient{readyErr: errors.New("no token")}
	client := NewCachedClient(inner, newMemCache(), time.Minute, testLogger())
	assert.EqualError(t, client.Ready(), "no token")
}

func TestCachedClientSearch(t *testing.T) {
	response := &SearchResponse{TotalCount: 1, Items: searchItems(1)}

	t.Run("miss fetches and stores", func(t *testing.T) {
		cache := newMemCache()
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, 30*time.Minute, testLogger())

		got, err := client.Search(context.Background(), "pushed:>=2026-08-30", "stars", "desc")
		require.NoError(t, err)
		assert.Equal(t, response, got)
		assert.Equal(t, 1, inner.calls)

		key := "github:search:pushed:>=2026-08-30:stars:desc"
		require.Contains(t, cache.entries, key)
		assert.Equal(t, 30*time.Minute, cache.ttls[key])
	})

	t.Run("hit skips the wrapped client", func(t *testing.T) {
		cache := newMemCache()
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		_, err := client.Search(context.Background(), "q", "stars", "desc")
		require.NoError(t, err)
		got, err := client.Search(context.Background(), "q", "stars", "desc")
		require.NoError(t, err)

		assert.Equal(t, 1, inner.calls, "the second lookup is served from cache")
		assert.Equal(t, response.TotalCount, got.TotalCount)
		assert.Equal(t, response.Items, got.Items)
	})

	t.Run("distinct queries do not share entries", func(t *testing.T) {
		cache := newMemCache()
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		_, err := client.Search(context.Background(), "q1", "stars", "desc")
		require.NoError(t, err)
		_, err = client.Search(context.Background(), "q2", "stars", "desc")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("read failure degrades to a direct fetch", func(t *testing.T) {
		cache := newMemCache()
		cache.getErr = errors.New("connection refused")
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		got, err := client.Search(context.Background(), "q", "stars", "desc")
		require.NoError(t, err)
		assert.Equal(t, response, got)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("undecodable entry is ignored", func(t *testing.T) {
		cache := newMemCache()
		cache.entries["github:search:q:stars:desc"] = []byte("not json")
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		got, err := client.Search(context.Background(), "q", "stars", "desc")
		require.NoError(t, err)
		assert.Equal(t, response, got)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("write failure is not surfaced", func(t *testing.T) {
		cache := newMemCache()
		cache.setErr = errors.New("connection refused")
		inner := &countingClient{response: response}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		got, err := client.Search(context.Background(), "q", "stars", "desc")
		require.NoError(t, err)
		assert.Equal(t, response, got)
	})

	t.Run("fetch failure is not cached", func(t *testing.T) {
		cache := newMemCache()
		inner := &countingClient{err: errors.New("upstream down")}
		client := NewCachedClient(inner, cache, time.Minute, testLogger())

		_, err := client.Search(context.Background(), "q", "stars", "desc")
		require.Error(t, err)
		assert.Empty(t, cache.entries)
	})
}

func TestCachedClientTrendingCandidates(t *testing.T) {
	cache := newMemCache()
	inner := &countingClient{response: &SearchResponse{Items: searchItems(150)}}
	client := NewCachedClient(inner, cache, time.Minute, testLogger())

	candidates, err := client.TrendingCandidates(context.Background(), models.TimeRangeDaily)
	require.NoError(t, err)
	assert.Len(t, candidates, 100, "the cap applies to cached fetches too")

	_, err = client.TrendingCandidates(context.Background(), models.TimeRangeDaily)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "the repeated fetch hits the cache")

	// The cache stores the full decoded response shape.
	var stored SearchResponse
	for _, data := range cache.entries {
		require.NoError(t, json.Unmarshal(data, &stored))
	}
	assert.Len(t, stored.Items, 150)
}
