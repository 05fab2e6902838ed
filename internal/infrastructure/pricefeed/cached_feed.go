package pricefeed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/metrics"
	"github.com/iho/fundledger/internal/usecase"
)

// CachedFeed keeps the latest quote of another feed in a shared cache for
// a short TTL. Concurrent misses share one upstream read. Cache failures
// fall back to the upstream feed.
type CachedFeed struct {
	feed    usecase.PriceFeed
	cache   usecase.Cache
	ttl     time.Duration
	key     string
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCachedFeed wraps feed with cache.
func NewCachedFeed(feed usecase.PriceFeed, cache usecase.Cache, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CachedFeed {
	return &CachedFeed{
		feed:    feed,
		cache:   cache,
		ttl:     ttl,
		key:     "quote:" + feed.Address(),
		metrics: m,
		logger:  logger.With().Str("component", "quote_cache").Logger(),
	}
}

// LatestQuote returns the cached quote or reads through to the feed.
func (f *CachedFeed) LatestQuote(ctx context.Context) (domain.PriceQuote, error) {
	raw, err := f.cache.Get(ctx, f.key)
	switch {
	case err == nil:
		quote, decodeErr := decodeQuote([]byte(raw))
		if decodeErr == nil {
			f.observe("hit")
			return quote, nil
		}
		f.logger.Warn().Err(decodeErr).Msg("dropping undecodable cached quote")
	case errors.Is(err, usecase.ErrCacheMiss):
	default:
		f.logger.Warn().Err(err).Msg("quote cache read failed")
	}

	f.observe("miss")

	v, err, _ := f.group.Do(f.key, func() (any, error) {
		quote, err := f.feed.LatestQuote(ctx)
		if err != nil {
			return domain.PriceQuote{}, err
		}

		if data, err := encodeQuote(quote); err == nil {
			if err := f.cache.Set(ctx, f.key, string(data), f.ttl); err != nil {
				f.logger.Warn().Err(err).Msg("quote cache write failed")
			}
		}

		return quote, nil
	})
	if err != nil {
		return domain.PriceQuote{}, err
	}

	return v.(domain.PriceQuote), nil
}

// Address returns the wrapped feed reference.
func (f *CachedFeed) Address() string {
	return f.feed.Address()
}

func (f *CachedFeed) observe(result string) {
	if f.metrics != nil {
		f.metrics.QuoteCacheHit.WithLabelValues(result).Inc()
	}
}
