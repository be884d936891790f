package warmer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/thenewsfeed/content-platform/internal/content/handler"
	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/internal/revalidate"
	"github.com/thenewsfeed/content-platform/pkg/config"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

type fakeRenderer struct {
	payloads map[string][]byte
	calls    []string
}

func (f *fakeRenderer) RenderPath(_ context.Context, path string) ([]byte, []string, error) {
	f.calls = append(f.calls, path)
	payload, ok := f.payloads[path]
	if !ok {
		return nil, nil, handler.ErrUnwarmable
	}
	return payload, []string{"posts"}, nil
}

func newTestWarmer(t *testing.T, renderer Renderer) (*Warmer, *rendercache.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Addr: mr.Addr(), PoolSize: 5, RenderTTL: time.Minute}
	client, err := pkgredis.NewClient(cfg)
	if err != nil {
		t.Fatalf("connecting to miniredis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	cache := rendercache.New(client, cfg, nil)
	return &Warmer{renderer: renderer, cache: cache, logger: slog.Default()}, cache
}

func eventBytes(t *testing.T, event revalidate.ChangeEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleWarmsListingPaths(t *testing.T) {
	renderer := &fakeRenderer{payloads: map[string][]byte{
		"/":     []byte("home"),
		"/blog": []byte("blog"),
	}}
	w, cache := newTestWarmer(t, renderer)

	event := revalidate.ChangeEvent{
		Kind:  "post",
		Paths: []string{"/", "/blog"},
	}
	if err := w.handle(context.Background(), []byte("42"), eventBytes(t, event)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if payload, ok := cache.Get(context.Background(), "/"); !ok || string(payload) != "home" {
		t.Errorf("home path not warmed, got %q ok=%v", payload, ok)
	}
	if payload, ok := cache.Get(context.Background(), "/blog"); !ok || string(payload) != "blog" {
		t.Errorf("blog path not warmed, got %q ok=%v", payload, ok)
	}
}

func TestHandleSkipsUnwarmablePaths(t *testing.T) {
	renderer := &fakeRenderer{payloads: map[string][]byte{"/": []byte("home")}}
	w, cache := newTestWarmer(t, renderer)

	event := revalidate.ChangeEvent{
		Kind:  "post",
		Paths: []string{"/blog/some-post", "/"},
	}
	if err := w.handle(context.Background(), nil, eventBytes(t, event)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, ok := cache.Get(context.Background(), "/blog/some-post"); ok {
		t.Error("detail path must not be warmed")
	}
	if _, ok := cache.Get(context.Background(), "/"); !ok {
		t.Error("warmable path in the same event must still be warmed")
	}
}

func TestHandleToleratesUndecodableEvents(t *testing.T) {
	renderer := &fakeRenderer{}
	w, _ := newTestWarmer(t, renderer)

	if err := w.handle(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("undecodable events must be swallowed, got %v", err)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("no render expected for undecodable event, got %v", renderer.calls)
	}
}

type failingRenderer struct{}

func (failingRenderer) RenderPath(context.Context, string) ([]byte, []string, error) {
	return nil, nil, errors.New("origin down")
}

func TestHandleToleratesRenderFailures(t *testing.T) {
	w, cache := newTestWarmer(t, failingRenderer{})

	event := revalidate.ChangeEvent{Kind: "path", Paths: []string{"/blog"}}
	if err := w.handle(context.Background(), nil, eventBytes(t, event)); err != nil {
		t.Fatalf("render failures must not fail the handler, got %v", err)
	}
	if _, ok := cache.Get(context.Background(), "/blog"); ok {
		t.Error("failed render must not populate the cache")
	}
}
