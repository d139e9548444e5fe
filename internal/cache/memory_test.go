package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 100})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	has, err := cache.Has(ctx, "key1")
	if err != nil || !has {
		t.Errorf("Has(key1) = %v, %v; want true, nil", has, err)
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key1"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_ = cache.Set(ctx, "short", []byte("v"), 10*time.Second)
	_ = cache.Set(ctx, "default", []byte("v"), 0)

	now = now.Add(11 * time.Second)
	if _, err := cache.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("short: expected ErrCacheMiss after TTL, got %v", err)
	}
	if _, err := cache.Get(ctx, "default"); err != nil {
		t.Errorf("default: expected hit within default TTL, got %v", err)
	}

	now = now.Add(time.Minute)
	if has, _ := cache.Has(ctx, "default"); has {
		t.Error("default: expected expired after default TTL")
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "q:roles:public:", []byte("1"), 0)
	_ = cache.Set(ctx, "q:roles:abc:page=2", []byte("2"), 0)
	_ = cache.Set(ctx, "q:users:abc:", []byte("3"), 0)

	if err := cache.DeleteByPrefix(ctx, "q:roles:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for _, k := range []string{"q:roles:public:", "q:roles:abc:page=2"} {
		if has, _ := cache.Has(ctx, k); has {
			t.Errorf("expected %s to be deleted", k)
		}
	}
	if has, _ := cache.Has(ctx, "q:users:abc:"); !has {
		t.Error("expected q:users:abc: to survive")
	}
}

func TestMemoryCache_MaxSizeEvictsOldest(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 2})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	now = now.Add(time.Second)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	now = now.Add(time.Second)
	_ = cache.Set(ctx, "c", []byte("3"), 0)

	if has, _ := cache.Has(ctx, "a"); has {
		t.Error("expected oldest entry a to be evicted")
	}
	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items = %d, want 2", got)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("12345"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 {
		t.Errorf("Stats = %+v, want 1 hit, 1 miss, 1 set", s)
	}
	if s.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", s.HitRate)
	}
	if s.Size != 5 {
		t.Errorf("Size = %d, want 5", s.Size)
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("after reset Stats = %+v", s)
	}
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	original := []byte("value")
	_ = cache.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "value" {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}
	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("stored value mutated through returned slice: %s", again)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 50})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (n+j)%26))
				_ = cache.Set(ctx, key, []byte{byte(j)}, 0)
				_, _ = cache.Get(ctx, key)
				if j%10 == 0 {
					_ = cache.DeleteByPrefix(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close is a no-op.
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := cache.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("Get after close = %v, want ErrCacheClosed", err)
	}
	if err := cache.Set(ctx, "k", nil, 0); err != ErrCacheClosed {
		t.Errorf("Set after close = %v, want ErrCacheClosed", err)
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := New(Config{DefaultTTL: time.Minute}, logger)
	defer func() { _ = c.Close() }()
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("New without RedisURL = %T, want *MemoryCache", c)
	}

	bad := New(Config{RedisURL: "redis://127.0.0.1:1/0"}, logger)
	defer func() { _ = bad.Close() }()
	if _, ok := bad.(*MemoryCache); !ok {
		t.Fatalf("New with unreachable redis = %T, want *MemoryCache", bad)
	}
}
