package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thenewsfeed/content-platform/pkg/config"
	apperrors "github.com/thenewsfeed/content-platform/pkg/errors"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
	"github.com/thenewsfeed/content-platform/pkg/resilience"
)

const originKeyPrefix = "origin:"

// CachePolicy controls how a single origin fetch interacts with the shared
// origin cache. The zero value means "use the client's default TTL for the
// resource"; NoStore bypasses the cache entirely (always-fresh reads).
type CachePolicy struct {
	TTL     time.Duration
	NoStore bool
}

// TTL returns a CachePolicy caching the response for d.
func TTL(d time.Duration) CachePolicy {
	return CachePolicy{TTL: d}
}

// NoStore bypasses the origin cache for both read and write.
var NoStore = CachePolicy{NoStore: true}

func (p CachePolicy) orDefault(d time.Duration) CachePolicy {
	if p.NoStore || p.TTL > 0 {
		return p
	}
	return CachePolicy{TTL: d}
}

// PostQuery carries the list filters supported by GET /posts.
type PostQuery struct {
	PerPage    int
	Page       int
	Categories []int64
	Tags       []int64
	Search     string
	Slug       string
	Policy     CachePolicy
}

// PageQuery carries the list filters supported by GET /pages.
type PageQuery struct {
	PerPage int
	Page    int
	Slug    string
	Policy  CachePolicy
}

// Client fetches resources from a WordPress REST origin. All configuration is
// injected at construction: base URL, per-fetch timeout, and default cache
// lifetimes. An optional Redis client backs a shared origin-response cache;
// when nil, every call goes to the origin.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	cache          *pkgredis.Client
	breaker        *resilience.CircuitBreaker
	fetchTimeout   time.Duration
	listTTL        time.Duration
	subresourceTTL time.Duration
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewClient creates a Client for the given origin. cache and m may be nil.
func NewClient(cfg config.WordPressConfig, cache *pkgredis.Client, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{},
		cache:          cache,
		breaker:        resilience.NewCircuitBreaker("wordpress-origin", resilience.CircuitBreakerConfig{}),
		fetchTimeout:   cfg.FetchTimeout,
		listTTL:        cfg.ListTTL,
		subresourceTTL: cfg.SubresourceTTL,
		metrics:        m,
		logger:         slog.Default().With("component", "wordpress-client"),
	}
}

// ListTTL returns the client's default cache lifetime for list fetches.
func (c *Client) ListTTL() time.Duration { return c.listTTL }

// Posts fetches posts with embedded author, media, and taxonomy data.
func (c *Client) Posts(ctx context.Context, q PostQuery) ([]Post, error) {
	values := url.Values{}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if len(q.Categories) > 0 {
		values.Set("categories", joinIDs(q.Categories))
	}
	if len(q.Tags) > 0 {
		values.Set("tags", joinIDs(q.Tags))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Slug != "" {
		values.Set("slug", q.Slug)
	}
	values.Set("_embed", "true")

	var posts []Post
	if err := c.get(ctx, "posts", "/posts", values, q.Policy.orDefault(c.listTTL), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostByID fetches a single post by its numeric ID with embedded data.
func (c *Client) PostByID(ctx context.Context, id int64) (*Post, error) {
	values := url.Values{}
	values.Set("_embed", "true")
	var post Post
	if err := c.get(ctx, "posts", fmt.Sprintf("/posts/%d", id), values, TTL(c.subresourceTTL), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Pages fetches pages with embedded author and media data.
func (c *Client) Pages(ctx context.Context, q PageQuery) ([]Page, error) {
	values := url.Values{}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Slug != "" {
		values.Set("slug", q.Slug)
	}
	values.Set("_embed", "true")

	var pages []Page
	if err := c.get(ctx, "pages", "/pages", values, q.Policy.orDefault(c.listTTL), &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Media fetches a media attachment by ID.
func (c *Client) Media(ctx context.Context, id int64) (*Media, error) {
	var media Media
	if err := c.get(ctx, "media", fmt.Sprintf("/media/%d", id), nil, TTL(c.subresourceTTL), &media); err != nil {
		return nil, err
	}
	return &media, nil
}

// User fetches an author record by ID.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.get(ctx, "users", fmt.Sprintf("/users/%d", id), nil, TTL(c.subresourceTTL), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Category fetches a single category term by ID.
func (c *Client) Category(ctx context.Context, id int64) (*Term, error) {
	var term Term
	if err := c.get(ctx, "categories", fmt.Sprintf("/categories/%d", id), nil, TTL(c.subresourceTTL), &term); err != nil {
		return nil, err
	}
	return &term, nil
}

// Categories fetches up to 100 category terms.
func (c *Client) Categories(ctx context.Context) ([]Term, error) {
	values := url.Values{}
	values.Set("per_page", "100")
	var terms []Term
	if err := c.get(ctx, "categories", "/categories", values, TTL(c.subresourceTTL), &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// Tags fetches up to 100 tag terms.
func (c *Client) Tags(ctx context.Context) ([]Term, error) {
	values := url.Values{}
	values.Set("per_page", "100")
	var terms []Term
	if err := c.get(ctx, "tags", "/tags", values, TTL(c.subresourceTTL), &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// get performs a single origin fetch honouring the cache policy: cached
// responses are served from Redis when fresh, misses go to the origin through
// the circuit breaker with an explicit per-fetch timeout, and successful
// bodies are written back with the policy's TTL.
func (c *Client) get(ctx context.Context, resource, path string, values url.Values, policy CachePolicy, out any) error {
	requestURL := c.baseURL + path
	if len(values) > 0 {
		requestURL += "?" + values.Encode()
	}
	key := originKeyPrefix + path
	if len(values) > 0 {
		key += "?" + values.Encode()
	}

	cacheable := c.cache != nil && !policy.NoStore && policy.TTL > 0
	if cacheable {
		if data, err := c.cache.Get(ctx, key); err == nil {
			if err := json.Unmarshal([]byte(data), out); err == nil {
				c.countOrigin(resource, "cached")
				return nil
			}
			c.logger.Warn("stale origin cache entry discarded", "key", key)
		} else if !pkgredis.IsNilError(err) {
			c.logger.Error("origin cache read failed", "key", key, "error", err)
		}
	}

	var body []byte
	start := time.Now()
	err := c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, c.fetchTimeout, "wordpress fetch "+path, func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}
			req.Header.Set("Accept", "application/json")
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", path, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				io.Copy(io.Discard, resp.Body)
				if resp.StatusCode == http.StatusNotFound {
					return apperrors.Newf(apperrors.ErrContentNotFound, http.StatusNotFound, "origin returned 404 for %s", path)
				}
				return apperrors.Newf(apperrors.ErrOriginUnavailable, http.StatusBadGateway, "origin returned %d for %s", resp.StatusCode, path)
			}
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response body: %w", err)
			}
			return nil
		})
	})
	if c.metrics != nil {
		c.metrics.OriginRequestLatency.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countOrigin(resource, "error")
		return err
	}
	c.countOrigin(resource, "ok")

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	if cacheable {
		if err := c.cache.Set(ctx, key, body, policy.TTL); err != nil {
			c.logger.Error("origin cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

func (c *Client) countOrigin(resource, outcome string) {
	if c.metrics != nil {
		c.metrics.OriginRequestsTotal.WithLabelValues(resource, outcome).Inc()
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
