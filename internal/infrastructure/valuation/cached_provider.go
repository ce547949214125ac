package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

const (
	cacheKeyPrefix  = "valuation:vin:"
	DefaultCacheTTL = 24 * time.Hour
)

var _ port.ValuationProvider = (*CachedProvider)(nil)

// CachedProvider memoizes successful lookups by VIN. Failures are not cached
// and a Redis outage degrades to an uncached lookup.
type CachedProvider struct {
	next   port.ValuationProvider
	rdb    goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachedProvider(next port.ValuationProvider, rdb goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// CacheKey is the Redis key for vin.
func CacheKey(vin string) string {
	return cacheKeyPrefix + strings.ToUpper(strings.TrimSpace(vin))
}

// FetchValuation implements port.ValuationProvider.
func (p *CachedProvider) FetchValuation(ctx context.Context, vehicle model.VehicleSnapshot) (model.ValuationResult, error) {
	key := CacheKey(vehicle.VIN)

	raw, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached model.ValuationResult
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
		p.logger.WarnContext(ctx, "discarding corrupt valuation cache entry", "key", key)
	case !errors.Is(err, goredis.Nil):
		p.logger.WarnContext(ctx, "valuation cache read failed", "key", key, "error", err)
	}

	result, err := p.next.FetchValuation(ctx, vehicle)
	if err != nil {
		return model.ValuationResult{}, err
	}

	if payload, jerr := json.Marshal(result); jerr == nil {
		if serr := p.rdb.Set(ctx, key, payload, p.ttl).Err(); serr != nil {
			p.logger.WarnContext(ctx, "valuation cache write failed", "key", key, "error", serr)
		}
	}
	return result, nil
}
