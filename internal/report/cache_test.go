package report

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return &redisCache{client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "lead-1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set(ctx, "lead-1", "<html>report</html>")

	html, ok := cache.Get(ctx, "lead-1")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if html != "<html>report</html>" {
		t.Fatalf("unexpected cached html %q", html)
	}

	if _, ok := cache.Get(ctx, "lead-2"); ok {
		t.Fatal("expected miss for different lead")
	}
}

func TestCacheEntriesExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := &redisCache{client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	ctx := context.Background()

	cache.Set(ctx, "lead-1", "<html></html>")
	mr.FastForward(reportCacheTTL + 1)

	if _, ok := cache.Get(ctx, "lead-1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	var cache Cache = noopCache{}
	ctx := context.Background()

	cache.Set(ctx, "lead-1", "<html></html>")
	if _, ok := cache.Get(ctx, "lead-1"); ok {
		t.Fatal("noop cache must always miss")
	}
}
