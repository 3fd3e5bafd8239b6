package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxListBytes = 64 << 20

// Cache stores raw token list documents between runs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// HTTPError is returned for a non-2xx token list response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("token list http %d", e.StatusCode)
	}
	return fmt.Sprintf("token list http %d: %s", e.StatusCode, b)
}

// Loader reads token lists from a URL or a local file.
type Loader struct {
	HTTP     *http.Client
	Cache    Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

func NewLoader(timeout time.Duration, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		HTTP:     &http.Client{Timeout: timeout},
		Cache:    cache,
		CacheTTL: cacheTTL,
		Logger:   logger,
	}
}

// Load returns the registry built from source for chainID.
func (l *Loader) Load(ctx context.Context, source string, chainID uint64) (*Registry, error) {
	data, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	list, err := ParseList(data)
	if err != nil {
		return nil, err
	}
	reg, skipped := RegistryFromList(list, chainID)
	l.Logger.Info("token list loaded",
		zap.String("source", source),
		zap.String("name", list.Name),
		zap.Int("entries", len(list.Tokens)),
		zap.Int("tokens", reg.Len()),
		zap.Int("skipped", skipped),
		zap.Uint64("chain_id", chainID),
	)
	return reg, nil
}

// Fetch returns the raw document at source. Remote documents go through the
// cache when one is configured; cache failures only log.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultListURL
	}
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read token list: %w", err)
		}
		return data, nil
	}

	key := cacheKey(source)
	if l.Cache != nil {
		data, ok, err := l.Cache.Get(ctx, key)
		if err != nil {
			l.Logger.Warn("token list cache read failed", zap.Error(err))
		} else if ok {
			l.Logger.Debug("token list cache hit", zap.String("source", source))
			return data, nil
		}
	}

	data, err := l.download(ctx, source)
	if err != nil {
		return nil, err
	}

	if l.Cache != nil && l.CacheTTL > 0 {
		if err := l.Cache.Set(ctx, key, data, l.CacheTTL); err != nil {
			l.Logger.Warn("token list cache write failed", zap.Error(err))
		}
	}
	return data, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	res, err := l.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch token list: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxListBytes))
	if err != nil {
		return nil, fmt.Errorf("read token list body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}
	return body, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "swapscope:tokenlist:" + hex.EncodeToString(sum[:8])
}
