// Package handler exposes the normalized content surface over HTTP. Listing
// endpoints are served through the render cache keyed by the site path they
// back (home, blog index, latest, trending, pages index); detail endpoints
// are always rendered fresh, both because slug lookups bypass the origin
// cache and because the view counter must advance per request.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/thenewsfeed/content-platform/internal/content"
	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/pkg/logger"
)

const defaultPerPage = 10

// ErrUnwarmable marks a path that cannot be pre-rendered: detail paths are
// rendered fresh per request, so warming them would be wasted work.
var ErrUnwarmable = errors.New("path is not warmable")

// Listing views and the site paths their cached payloads live under.
var listingViews = map[string]string{
	"home":     "/",
	"blog":     "/blog",
	"latest":   "/latest",
	"trending": "/trending",
}

// Handler serves the content API.
type Handler struct {
	source content.Source
	cache  *rendercache.Cache
	logger *slog.Logger
}

// New creates a Handler. cache may be nil, in which case every request is
// rendered fresh.
func New(source content.Source, cache *rendercache.Cache) *Handler {
	return &Handler{
		source: source,
		cache:  cache,
		logger: slog.Default().With("component", "content-handler"),
	}
}

type listResponse struct {
	Items []content.Article `json:"items"`
	Count int               `json:"count"`
}

type termListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// ListPosts handles GET /api/v1/posts. The optional view parameter selects a
// named listing (home, blog, latest, trending); named listings with no other
// filters ride the render cache. Filtered queries are rendered fresh.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	opts, err := parseListOptions(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "blog"
	}
	path, ok := listingViews[view]
	if !ok {
		h.writeError(w, http.StatusBadRequest, "unknown view "+strconv.Quote(view))
		return
	}
	cacheable := h.cache != nil && !opts.Filtered() && opts.PerPage == defaultPerPage

	if !cacheable {
		articles := h.source.Posts(ctx, opts)
		h.writeJSON(w, http.StatusOK, listResponse{Items: articles, Count: len(articles)})
		return
	}

	payload, hit, err := h.cache.GetOrCompute(ctx, path, []string{"posts"}, func() ([]byte, error) {
		articles := h.source.Posts(ctx, opts)
		return json.Marshal(listResponse{Items: articles, Count: len(articles)})
	})
	if err != nil {
		log.Error("listing render failed", "view", view, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to render listing")
		return
	}
	log.Debug("listing served", "view", view, "cache_hit", hit)
	h.writeRaw(w, payload)
}

// GetPost handles GET /api/v1/posts/{slug}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "slug is required")
		return
	}
	article := h.source.PostBySlug(r.Context(), slug)
	if article == nil {
		h.writeError(w, http.StatusNotFound, "post not found")
		return
	}
	h.writeJSON(w, http.StatusOK, article)
}

// GetArticle handles GET /api/v1/articles/{id}, the legacy id-based detail
// route.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	article := h.source.PostByID(r.Context(), id)
	if article == nil {
		h.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	h.writeJSON(w, http.StatusOK, article)
}

// ListPages handles GET /api/v1/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	opts := content.PageOptions{PerPage: defaultPerPage}
	var err error
	if opts.PerPage, opts.Page, err = parsePagination(r); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.cache == nil || opts.Page > 1 {
		articles := h.source.Pages(ctx, opts)
		h.writeJSON(w, http.StatusOK, listResponse{Items: articles, Count: len(articles)})
		return
	}

	payload, hit, err := h.cache.GetOrCompute(ctx, "/page", []string{"pages"}, func() ([]byte, error) {
		articles := h.source.Pages(ctx, opts)
		return json.Marshal(listResponse{Items: articles, Count: len(articles)})
	})
	if err != nil {
		log.Error("pages render failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to render pages")
		return
	}
	log.Debug("pages served", "cache_hit", hit)
	h.writeRaw(w, payload)
}

// GetPage handles GET /api/v1/pages/{slug}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "slug is required")
		return
	}
	article := h.source.PageBySlug(r.Context(), slug)
	if article == nil {
		h.writeError(w, http.StatusNotFound, "page not found")
		return
	}
	h.writeJSON(w, http.StatusOK, article)
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.source.Categories(r.Context())
	h.writeJSON(w, http.StatusOK, termListResponse[content.Category]{Items: categories, Count: len(categories)})
}

// ListTags handles GET /api/v1/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags := h.source.Tags(r.Context())
	h.writeJSON(w, http.StatusOK, termListResponse[content.Tag]{Items: tags, Count: len(tags)})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":   hits,
		"misses": misses,
		"total":  hits + misses,
	})
}

// PurgeCache handles POST /api/v1/cache/purge, dropping every render entry.
func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	entries, err := h.cache.Purge(r.Context())
	if err != nil {
		h.logger.Error("cache purge failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache purge failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "purged", "entries": entries})
}

// Health reports liveness for the content service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RenderPath renders the payload cached under a site path, for the warmer.
// Only listing paths are warmable.
func (h *Handler) RenderPath(ctx context.Context, path string) ([]byte, []string, error) {
	switch path {
	case "/", "/blog", "/latest", "/trending":
		articles := h.source.Posts(ctx, content.ListOptions{PerPage: defaultPerPage})
		payload, err := json.Marshal(listResponse{Items: articles, Count: len(articles)})
		return payload, []string{"posts"}, err
	case "/page":
		articles := h.source.Pages(ctx, content.PageOptions{PerPage: defaultPerPage})
		payload, err := json.Marshal(listResponse{Items: articles, Count: len(articles)})
		return payload, []string{"pages"}, err
	default:
		return nil, nil, ErrUnwarmable
	}
}

func parseListOptions(r *http.Request) (content.ListOptions, error) {
	opts := content.ListOptions{
		Search: r.URL.Query().Get("search"),
	}
	var err error
	if opts.PerPage, opts.Page, err = parsePagination(r); err != nil {
		return opts, err
	}
	if opts.Categories, err = parseIDList(r.URL.Query().Get("categories")); err != nil {
		return opts, errors.New("categories must be a comma-separated list of integers")
	}
	if opts.Tags, err = parseIDList(r.URL.Query().Get("tags")); err != nil {
		return opts, errors.New("tags must be a comma-separated list of integers")
	}
	return opts, nil
}

func parsePagination(r *http.Request) (perPage, page int, err error) {
	perPage = defaultPerPage
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return 0, 0, errors.New("per_page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	return perPage, page, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) writeRaw(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
