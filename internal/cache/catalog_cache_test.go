package cache

import (
	"context"
	"testing"
	"time"

	"calcosnqn/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger, _ := zap.NewDevelopment()
	return NewCatalogCache(client, logger), mr
}

func TestPageRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	filter := domain.CatalogFilter{Search: "gato", Page: 2}
	payload := []byte(`{"items":[],"total":0}`)

	if got := cache.GetPage(ctx, filter); got != nil {
		t.Fatalf("cold read = %q, want nil", got)
	}

	cache.SetPage(ctx, filter, payload)

	if got := cache.GetPage(ctx, filter); string(got) != string(payload) {
		t.Errorf("warm read = %q, want %q", got, payload)
	}
}

func TestDifferentFiltersUseDifferentKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetPage(ctx, domain.CatalogFilter{Page: 1}, []byte("page-one"))

	if got := cache.GetPage(ctx, domain.CatalogFilter{Page: 2}); got != nil {
		t.Errorf("page 2 read = %q, want nil", got)
	}
	if got := cache.GetPage(ctx, domain.CatalogFilter{Page: 1, Search: "gato"}); got != nil {
		t.Errorf("filtered read = %q, want nil", got)
	}
}

func TestInvalidateDropsEveryPage(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	filter := domain.CatalogFilter{Page: 1}
	cache.SetPage(ctx, filter, []byte("stale"))

	cache.Invalidate(ctx)

	if got := cache.GetPage(ctx, filter); got != nil {
		t.Errorf("read after invalidation = %q, want nil", got)
	}

	version, err := mr.Get("catalog:version")
	if err != nil || version != "1" {
		t.Errorf("version = %q (err %v), want 1", version, err)
	}
}

func TestCacheFailsOpenWhenRedisIsDown(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	filter := domain.CatalogFilter{Page: 1}

	// None of these may panic or block; reads just miss.
	cache.SetPage(ctx, filter, []byte("unreachable"))
	cache.Invalidate(ctx)
	if got := cache.GetPage(ctx, filter); got != nil {
		t.Errorf("read against a dead redis = %q, want nil", got)
	}
}

func TestEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	filter := domain.CatalogFilter{Page: 1}
	cache.SetPage(ctx, filter, []byte("short-lived"))

	mr.FastForward(defaultTTL + time.Second)

	if got := cache.GetPage(ctx, filter); got != nil {
		t.Errorf("read after TTL = %q, want nil", got)
	}
}
