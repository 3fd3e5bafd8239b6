package tokens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	data, ok := c.data[key]
	return data, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.ttl = ttl
	return c.err
}

func TestLoaderFetchesAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("accept") != "application/json" {
			http.Error(w, "bad accept header", http.StatusNotAcceptable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleList))
	}))
	defer server.Close()

	cache := newMemoryCache()
	loader := NewLoader(time.Second, cache, time.Hour, zap.NewNop())

	reg, err := loader.Load(context.Background(), server.URL, 1)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())
	require.Equal(t, time.Hour, cache.ttl)

	reg, err = loader.Load(context.Background(), server.URL, 1)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())
	require.Equal(t, int32(1), hits.Load())
}

func TestLoaderCacheErrorFallsThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleList))
	}))
	defer server.Close()

	cache := newMemoryCache()
	cache.err = errors.New("connection refused")
	loader := NewLoader(time.Second, cache, time.Hour, nil)

	reg, err := loader.Load(context.Background(), server.URL, 0)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
}

func TestLoaderHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	loader := NewLoader(time.Second, nil, 0, nil)
	_, err := loader.Load(context.Background(), server.URL, 1)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	require.Contains(t, httpErr.Error(), "rate limited")
}

func TestLoaderReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleList), 0o644))

	loader := NewLoader(0, nil, 0, nil)
	reg, err := loader.Load(context.Background(), path, 1)
	require.NoError(t, err)

	meta, ok := reg.Lookup(common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"))
	require.True(t, ok)
	require.Equal(t, "DAI", meta.Symbol)

	_, err = loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), 1)
	require.Error(t, err)
}
