package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/database"
	"github.com/quantdesk/quantdesk-go/internal/models"
)

// BarProvider supplies daily bars for a symbol and date range.
type BarProvider interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
}

// CachedProvider caches bar-series responses in Redis as JSON with a TTL,
// falling through to the inner provider on a miss. Cache failures are logged
// and never fail the fetch.
type CachedProvider struct {
	inner  BarProvider
	redis  *database.RedisClient
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedProvider wraps the given provider with a Redis cache.
func NewCachedProvider(inner BarProvider, redis *database.RedisClient, ttl time.Duration, logger *logrus.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: logger,
	}
}

// DailyBars returns the cached series when present, otherwise fetches and
// caches it.
func (p *CachedProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	key := p.cacheKey(symbol, start, end)

	if cached, ok := p.getCached(ctx, key); ok {
		return cached, nil
	}

	bars, err := p.inner.DailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	p.setCached(ctx, key, bars)
	return bars, nil
}

// cacheKey normalizes the symbol the same way the fetcher does, so "aapl"
// and "AAPL" share one cache entry.
func (p *CachedProvider) cacheKey(symbol string, start, end time.Time) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return fmt.Sprintf("bars:%s:%s:%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (p *CachedProvider) getCached(ctx context.Context, key string) ([]models.PriceBar, bool) {
	if p.redis == nil {
		return nil, false
	}

	data, err := p.redis.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var bars []models.PriceBar
	if err := json.Unmarshal([]byte(data), &bars); err != nil {
		p.logger.WithError(err).Warn("Failed to unmarshal cached bars")
		return nil, false
	}

	p.logger.WithField("key", key).Debug("Bar cache hit")
	return bars, true
}

func (p *CachedProvider) setCached(ctx context.Context, key string, bars []models.PriceBar) {
	if p.redis == nil {
		return
	}

	data, err := json.Marshal(bars)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to marshal bars for caching")
		return
	}

	if err := p.redis.Set(ctx, key, string(data), p.ttl); err != nil {
		p.logger.WithError(err).Warn("Failed to cache bars")
	}
}
