// Package cache provides read-through caching in front of slow lookups
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/ports/outbound"
	apperrors "github.com/planifia/planner/pkg/errors"
)

// DefaultResolutionTTL applies when no ttl is configured
const DefaultResolutionTTL = 24 * time.Hour

const resolutionKeyPrefix = "resolution:"

// ResolutionCache decorates a DishIngredientLookup with a CacheRepository.
// Cache failures are logged and fall through to the wrapped lookup.
type ResolutionCache struct {
	next   outbound.DishIngredientLookup
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolutionCache wraps next
func NewResolutionCache(next outbound.DishIngredientLookup, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *ResolutionCache {
	if ttl <= 0 {
		ttl = DefaultResolutionTTL
	}
	return &ResolutionCache{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("resolution-cache"),
	}
}

var _ outbound.DishIngredientLookup = (*ResolutionCache)(nil)

// Resolve returns the cached breakdown of dishName or computes and stores it
func (c *ResolutionCache) Resolve(ctx context.Context, dishName string) (ingredient.Resolution, error) {
	key := resolutionKey(dishName)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached ingredient.Resolution
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("Discarding undecodable cached resolution", zap.String("key", key))
	case !errors.Is(err, outbound.ErrCacheMiss):
		c.logger.Warn("Resolution cache read failed", zap.String("key", key), zap.Error(apperrors.NewCacheError("read resolution", err)))
	}

	res, err := c.next.Resolve(ctx, dishName)
	if err != nil {
		return ingredient.Resolution{}, err
	}

	if encoded, err := json.Marshal(res); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.ttl); err != nil {
			c.logger.Warn("Resolution cache write failed", zap.String("key", key), zap.Error(apperrors.NewCacheError("write resolution", err)))
		}
	}
	return res, nil
}

// Invalidate drops the cached breakdown of dishName
func (c *ResolutionCache) Invalidate(ctx context.Context, dishName string) error {
	if err := c.cache.Delete(ctx, resolutionKey(dishName)); err != nil {
		return apperrors.NewCacheError("invalidate resolution", err)
	}
	return nil
}

func resolutionKey(dishName string) string {
	return resolutionKeyPrefix + strings.TrimSpace(dishName)
}
