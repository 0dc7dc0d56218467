package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, limit int) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter, err := NewFixedWindowLimiter(client, "test:login", limit, time.Minute)
	if err != nil {
		t.Fatalf("NewFixedWindowLimiter() error = %v", err)
	}
	return limiter, mr
}

func TestFixedWindowLimiter(t *testing.T) {
	limiter, _ := newLimiter(t, 2)
	ctx := context.Background()

	if !limiter.Allow(ctx, "203.0.113.5") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow(ctx, "203.0.113.5") {
		t.Fatal("second request should pass")
	}
	if limiter.Allow(ctx, "203.0.113.5") {
		t.Fatal("third request should be blocked")
	}
	if !limiter.Allow(ctx, "203.0.113.6") {
		t.Fatal("other key should have its own quota")
	}
}

func TestFixedWindowLimiterNextWindow(t *testing.T) {
	limiter, _ := newLimiter(t, 1)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	ctx := context.Background()

	if !limiter.Allow(ctx, "k") || limiter.Allow(ctx, "k") {
		t.Fatal("expected one hit per window")
	}
	limiter.now = func() time.Time { return base.Add(time.Minute) }
	if !limiter.Allow(ctx, "k") {
		t.Fatal("new window should reset the quota")
	}
}

func TestFixedWindowLimiterFailClosed(t *testing.T) {
	limiter, mr := newLimiter(t, 5)
	mr.Close()
	if limiter.Allow(context.Background(), "k") {
		t.Fatal("limiter should deny when redis is down")
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *FixedWindowLimiter
	if !limiter.Allow(context.Background(), "k") {
		t.Fatal("nil limiter should allow")
	}
}

func TestNewFixedWindowLimiterValidates(t *testing.T) {
	if _, err := NewFixedWindowLimiter(nil, "", 1, time.Second); err == nil {
		t.Fatal("expected error for nil client")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	if _, err := NewFixedWindowLimiter(client, "", 0, time.Second); err == nil {
		t.Fatal("expected error for zero limit")
	}
}
