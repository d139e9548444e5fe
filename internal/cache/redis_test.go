package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func getTestRedisURL() string {
	return os.Getenv("SOSLAW_TEST_REDIS_URL")
}

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := getTestRedisURL()
	if url == "" {
		t.Skip("Skipping Redis tests: SOSLAW_TEST_REDIS_URL not set")
	}

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "soslaw-test:" + t.Name() + ":"
	c, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache failed: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	return c
}

func TestRedisCache_BasicOperations(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, nil", got, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get after delete = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "q:roles:a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "q:users:a", []byte("2"), time.Minute)

	if err := c.DeleteByPrefix(ctx, "q:roles:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if has, _ := c.Has(ctx, "q:roles:a"); has {
		t.Error("expected q:roles:a to be deleted")
	}
	if has, _ := c.Has(ctx, "q:users:a"); !has {
		t.Error("expected q:users:a to survive")
	}
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
