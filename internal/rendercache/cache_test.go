package rendercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/thenewsfeed/content-platform/pkg/config"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{
		Addr:      mr.Addr(),
		PoolSize:  5,
		RenderTTL: time.Minute,
	}
	client, err := pkgredis.NewClient(cfg)
	if err != nil {
		t.Fatalf("connecting to miniredis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return New(client, cfg, nil), mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "/blog"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set(ctx, "/blog", []string{"posts"}, []byte(`{"items":[]}`))
	payload, ok := cache.Get(ctx, "/blog")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(payload) != `{"items":[]}` {
		t.Errorf("unexpected payload %q", payload)
	}
}

func TestEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "/blog", nil, []byte("x"))
	mr.FastForward(2 * time.Minute)
	if _, ok := cache.Get(ctx, "/blog"); ok {
		t.Error("expected entry to expire after the render TTL")
	}
}

func TestGetOrComputeCoalesces(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	var computes atomic.Int64
	compute := func() ([]byte, error) {
		computes.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []byte("rendered"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, _, err := cache.GetOrCompute(ctx, "/latest", []string{"posts"}, compute)
			if err != nil {
				t.Errorf("GetOrCompute: %v", err)
				return
			}
			if string(payload) != "rendered" {
				t.Errorf("unexpected payload %q", payload)
			}
		}()
	}
	wg.Wait()

	if n := computes.Load(); n != 1 {
		t.Errorf("expected a single compute for concurrent misses, got %d", n)
	}
}

func TestGetOrComputePropagatesComputeError(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("origin down")
	_, _, err := cache.GetOrCompute(ctx, "/blog", nil, func() ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected compute error, got %v", err)
	}
	if _, ok := cache.Get(ctx, "/blog"); ok {
		t.Error("failed computes must not populate the cache")
	}
}

func TestInvalidatePath(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "/blog", nil, []byte("a"))
	cache.Set(ctx, "/latest", nil, []byte("b"))
	if err := cache.InvalidatePath(ctx, "/blog"); err != nil {
		t.Fatalf("InvalidatePath: %v", err)
	}
	if _, ok := cache.Get(ctx, "/blog"); ok {
		t.Error("invalidated path must miss")
	}
	if _, ok := cache.Get(ctx, "/latest"); !ok {
		t.Error("other paths must be untouched")
	}
}

func TestInvalidateTagPurgesAllMembers(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "/", []string{"posts"}, []byte("home"))
	cache.Set(ctx, "/blog", []string{"posts"}, []byte("blog"))
	cache.Set(ctx, "/page", []string{"pages"}, []byte("pages"))

	if err := cache.InvalidateTag(ctx, "posts"); err != nil {
		t.Fatalf("InvalidateTag: %v", err)
	}
	if _, ok := cache.Get(ctx, "/"); ok {
		t.Error("tagged entry must be purged")
	}
	if _, ok := cache.Get(ctx, "/blog"); ok {
		t.Error("tagged entry must be purged")
	}
	if _, ok := cache.Get(ctx, "/page"); !ok {
		t.Error("entries under other tags must survive")
	}
}

func TestInvalidateUnknownTagIsNoop(t *testing.T) {
	cache, _ := newTestCache(t)
	if err := cache.InvalidateTag(context.Background(), "nope"); err != nil {
		t.Errorf("unknown tag must not error, got %v", err)
	}
}

func TestPurgeDropsEverything(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "/", []string{"posts"}, []byte("home"))
	cache.Set(ctx, "/blog", []string{"posts"}, []byte("blog"))

	entries, err := cache.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if entries != 2 {
		t.Errorf("expected 2 purged entries, got %d", entries)
	}
	if _, ok := cache.Get(ctx, "/"); ok {
		t.Error("purged entry must miss")
	}
	// Tag sets are gone too: invalidating the old tag is a no-op.
	if err := cache.InvalidateTag(ctx, "posts"); err != nil {
		t.Errorf("InvalidateTag after purge: %v", err)
	}
}

func TestStatsCountHitsAndMisses(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Get(ctx, "/blog")
	cache.Set(ctx, "/blog", nil, []byte("x"))
	cache.Get(ctx, "/blog")

	hits, misses := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}
