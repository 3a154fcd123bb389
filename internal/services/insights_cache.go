package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// InsightsCache stores generated insights. Cache failures are logged and
// treated as misses.
type InsightsCache interface {
	Get(ctx context.Context, key string) (*dtos.Insights, bool)
	Set(ctx context.Context, key string, in *dtos.Insights)
}

type NoopInsightsCache struct{}

func (NoopInsightsCache) Get(context.Context, string) (*dtos.Insights, bool) { return nil, false }
func (NoopInsightsCache) Set(context.Context, string, *dtos.Insights)         {}

type redisInsightsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisInsightsCache(rdb *redis.Client, ttl time.Duration) InsightsCache {
	return &redisInsightsCache{rdb: rdb, ttl: ttl}
}

func (c *redisInsightsCache) Get(ctx context.Context, key string) (*dtos.Insights, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		utils.Logger.WithError(err).Warn("Insights cache read failed")
		return nil, false
	}
	var in dtos.Insights
	if err := json.Unmarshal(raw, &in); err != nil {
		utils.Logger.WithError(err).Warn("Discarding unreadable cached insights")
		return nil, false
	}
	return &in, true
}

func (c *redisInsightsCache) Set(ctx context.Context, key string, in *dtos.Insights) {
	raw, err := json.Marshal(in)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		utils.Logger.WithError(err).Warn("Insights cache write failed")
	}
}

func insightsCacheKey(model string, snap PortfolioSnapshot) string {
	raw, _ := json.Marshal(snap)
	sum := sha256.Sum256(append([]byte(model+"|"), raw...))
	return constants.InsightsCacheKeyPrefix + hex.EncodeToString(sum[:])
}
