package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/thenewsfeed/content-platform/internal/content"
	"github.com/thenewsfeed/content-platform/internal/content/static"
	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/pkg/config"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

// countingSource wraps a Source and counts Posts calls.
type countingSource struct {
	content.Source
	posts atomic.Int64
}

func (c *countingSource) Posts(ctx context.Context, opts content.ListOptions) []content.Article {
	c.posts.Add(1)
	return c.Source.Posts(ctx, opts)
}

func newTestServer(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/posts", h.ListPosts)
	mux.HandleFunc("GET /api/v1/posts/{slug}", h.GetPost)
	mux.HandleFunc("GET /api/v1/articles/{id}", h.GetArticle)
	mux.HandleFunc("GET /api/v1/pages", h.ListPages)
	mux.HandleFunc("GET /api/v1/pages/{slug}", h.GetPage)
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/tags", h.ListTags)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestListPosts(t *testing.T) {
	srv := newTestServer(t, New(static.New(), nil))

	var resp listResponse
	if code := getJSON(t, srv, "/api/v1/posts", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Count != 3 || len(resp.Items) != 3 {
		t.Fatalf("expected 3 fixture posts, got %d", resp.Count)
	}
	for _, a := range resp.Items {
		if a.Author.Name == "" || a.ImageURL == "" {
			t.Errorf("article %s missing author or image", a.ID)
		}
	}
}

func TestListPostsRejectsBadPagination(t *testing.T) {
	srv := newTestServer(t, New(static.New(), nil))
	if code := getJSON(t, srv, "/api/v1/posts?per_page=0", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for per_page=0, got %d", code)
	}
	if code := getJSON(t, srv, "/api/v1/posts?page=x", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric page, got %d", code)
	}
	if code := getJSON(t, srv, "/api/v1/posts?view=nope", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown view, got %d", code)
	}
}

func TestGetPostBySlug(t *testing.T) {
	srv := newTestServer(t, New(static.New(), nil))

	var article content.Article
	if code := getJSON(t, srv, "/api/v1/posts/ai-assistants-reshape-newsrooms", &article); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if article.ID != "1" {
		t.Errorf("unexpected article %+v", article)
	}

	if code := getJSON(t, srv, "/api/v1/posts/no-such-slug", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown slug, got %d", code)
	}
}

func TestGetArticleByID(t *testing.T) {
	srv := newTestServer(t, New(static.New(), nil))

	var article content.Article
	if code := getJSON(t, srv, "/api/v1/articles/2", &article); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if article.Slug != "regional-banks-quarterly-surprise" {
		t.Errorf("unexpected article %+v", article)
	}

	if code := getJSON(t, srv, "/api/v1/articles/abc", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", code)
	}
	if code := getJSON(t, srv, "/api/v1/articles/9999", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", code)
	}
}

func TestPagesAndTerms(t *testing.T) {
	srv := newTestServer(t, New(static.New(), nil))

	var pages listResponse
	if code := getJSON(t, srv, "/api/v1/pages", &pages); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if pages.Count != 2 {
		t.Errorf("expected 2 fixture pages, got %d", pages.Count)
	}

	var page content.Article
	if code := getJSON(t, srv, "/api/v1/pages/about", &page); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if page.ID != "page-10" || page.Category != "Page" {
		t.Errorf("unexpected page %+v", page)
	}

	var categories termListResponse[content.Category]
	if code := getJSON(t, srv, "/api/v1/categories", &categories); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if categories.Count != 3 {
		t.Errorf("expected 3 categories, got %d", categories.Count)
	}
}

func TestListPostsServedFromRenderCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Addr: mr.Addr(), PoolSize: 5, RenderTTL: time.Minute}
	client, err := pkgredis.NewClient(cfg)
	if err != nil {
		t.Fatalf("connecting to miniredis: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	source := &countingSource{Source: static.New()}
	h := New(source, rendercache.New(client, cfg, nil))
	srv := newTestServer(t, h)

	var first, second listResponse
	getJSON(t, srv, "/api/v1/posts", &first)
	getJSON(t, srv, "/api/v1/posts", &second)

	if n := source.posts.Load(); n != 1 {
		t.Errorf("expected one source render for two requests, got %d", n)
	}
	if first.Count != second.Count {
		t.Errorf("cached response must match fresh response: %d vs %d", first.Count, second.Count)
	}

	// A filtered query must not be served from, or stored in, the shared cache.
	getJSON(t, srv, "/api/v1/posts?search=transit", nil)
	if n := source.posts.Load(); n != 2 {
		t.Errorf("filtered query must bypass the cache, got %d source calls", n)
	}
}

func TestRenderPath(t *testing.T) {
	h := New(static.New(), nil)

	payload, tags, err := h.RenderPath(context.Background(), "/blog")
	if err != nil {
		t.Fatalf("RenderPath: %v", err)
	}
	if len(tags) != 1 || tags[0] != "posts" {
		t.Errorf("expected posts tag, got %v", tags)
	}
	var resp listResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("payload must be JSON: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("expected 3 posts, got %d", resp.Count)
	}

	if _, _, err := h.RenderPath(context.Background(), "/blog/some-post"); err != ErrUnwarmable {
		t.Errorf("detail paths must be unwarmable, got %v", err)
	}
}
