package rediscache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"hostel_rates/internal/adapters/observability"
	"hostel_rates/internal/adapters/rediscache"
	"hostel_rates/internal/domain"
)

func newTestCache(t *testing.T) (*rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return rediscache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_TokenRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	want := domain.PageTokens{Pagename: "hostal-ramos", CountryCode: "es", CSRFToken: "tok123"}
	key := "tokens:https://example.test/hotel/es/hostal-ramos.es.html"

	if err := c.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.PageTokens
	ok, err := c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCache_MissAndExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got domain.PageTokens
	ok, err := c.Get(ctx, "tokens:absent", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss for absent key")
	}

	if err := c.Set(ctx, "tokens:short", domain.PageTokens{Pagename: "x"}, time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	ok, err = c.Get(ctx, "tokens:short", &got)
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCache_FailedSetNotCounted(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	setCounter := observability.CacheEvents.WithLabelValues("redis", "set")
	before := testutil.ToFloat64(setCounter)

	mr.Close()
	if err := c.Set(ctx, "tokens:down", domain.PageTokens{Pagename: "x"}, time.Minute); err == nil {
		t.Fatal("expected error once the server is gone")
	}
	if after := testutil.ToFloat64(setCounter); after != before {
		t.Fatalf("set counter moved %v -> %v on a failed set", before, after)
	}
}

func TestCache_Del(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "tokens:gone", domain.PageTokens{Pagename: "x"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "tokens:gone"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var got domain.PageTokens
	if ok, _ := c.Get(ctx, "tokens:gone", &got); ok {
		t.Fatal("expected miss after delete")
	}
}
