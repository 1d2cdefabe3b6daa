package report

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"growthscore_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// Cache keeps rendered report HTML out of Postgres on the hot path. Reports
// are immutable once generated, so entries never need invalidation and only
// expire to bound memory.
type Cache interface {
	Get(ctx context.Context, leadID string) (string, bool)
	Set(ctx context.Context, leadID string, html string)
}

const reportCacheTTL = 24 * time.Hour

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.CacheConfig) (Cache, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return noopCache{}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	return &redisCache{client: redis.NewClient(opt)}, nil
}

func (c *redisCache) Get(ctx context.Context, leadID string) (string, bool) {
	html, err := c.client.Get(ctx, cacheKey(leadID)).Result()
	if err != nil {
		return "", false
	}
	return html, true
}

func (c *redisCache) Set(ctx context.Context, leadID string, html string) {
	c.client.Set(ctx, cacheKey(leadID), html, reportCacheTTL)
}

func cacheKey(leadID string) string {
	return "quiz:report:" + leadID
}

// noopCache stands in when no Redis is configured. Every read falls through
// to the database.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (string, bool) { return "", false }
func (noopCache) Set(context.Context, string, string)        {}
