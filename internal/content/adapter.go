package content

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/thenewsfeed/content-platform/internal/views"
	"github.com/thenewsfeed/content-platform/internal/wordpress"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
)

// Adapter produces normalized Articles from the WordPress origin. It holds no
// state across calls; caching lives in the origin client and the render cache,
// neither of which the adapter owns.
//
// The fail-soft contract: origin failures are logged and converted to empty
// or nil results at this boundary. A CMS outage degrades the site to "no
// content" rather than failing page generation.
type Adapter struct {
	origin  *wordpress.Client
	views   *views.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ Source = (*Adapter)(nil)

// NewAdapter creates an Adapter. viewStore and m may be nil; without a view
// store all view counts are reported as 0 (the documented "unavailable"
// sentinel — there is no analytics integration to invent numbers from).
func NewAdapter(origin *wordpress.Client, viewStore *views.Store, m *metrics.Metrics) *Adapter {
	return &Adapter{
		origin:  origin,
		views:   viewStore,
		metrics: m,
		logger:  slog.Default().With("component", "content-adapter"),
	}
}

// Posts lists normalized posts in origin order. Enrichment fans out per item;
// the call completes when every item is resolved, but items never block each
// other.
func (a *Adapter) Posts(ctx context.Context, opts ListOptions) []Article {
	query := wordpress.PostQuery{
		PerPage:    opts.PerPage,
		Page:       opts.Page,
		Categories: opts.Categories,
		Tags:       opts.Tags,
		Search:     opts.Search,
		Slug:       opts.Slug,
	}
	if opts.Fresh {
		query.Policy = wordpress.NoStore
	}
	posts, err := a.origin.Posts(ctx, query)
	if err != nil {
		a.logger.Error("failed to list posts", "error", err)
		return []Article{}
	}

	articles := make([]Article, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	for i, post := range posts {
		g.Go(func() error {
			articles[i] = a.articleFromPost(gctx, post)
			return nil
		})
	}
	g.Wait()
	return articles
}

// PostBySlug returns the post with the given slug, or nil when it does not
// exist. Slug lookups always bypass the origin cache: detail pages are served
// fresh while list pages ride the time-based cache.
func (a *Adapter) PostBySlug(ctx context.Context, slug string) *Article {
	articles := a.Posts(ctx, ListOptions{Slug: slug, PerPage: 1, Fresh: true})
	if len(articles) == 0 {
		return nil
	}
	article := articles[0]
	a.fillViews(ctx, &article)
	return &article
}

// PostByID returns the post with the given numeric ID, or nil on any origin
// failure.
func (a *Adapter) PostByID(ctx context.Context, id int64) *Article {
	post, err := a.origin.PostByID(ctx, id)
	if err != nil {
		a.logger.Error("failed to fetch post", "post_id", id, "error", err)
		return nil
	}
	article := a.articleFromPost(ctx, *post)
	a.fillViews(ctx, &article)
	return &article
}

// Pages lists normalized pages in origin order.
func (a *Adapter) Pages(ctx context.Context, opts PageOptions) []Article {
	query := wordpress.PageQuery{
		PerPage: opts.PerPage,
		Page:    opts.Page,
		Slug:    opts.Slug,
	}
	if opts.Fresh {
		query.Policy = wordpress.NoStore
	}
	pages, err := a.origin.Pages(ctx, query)
	if err != nil {
		a.logger.Error("failed to list pages", "error", err)
		return []Article{}
	}

	articles := make([]Article, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, page := range pages {
		g.Go(func() error {
			articles[i] = a.articleFromPage(gctx, page)
			return nil
		})
	}
	g.Wait()
	return articles
}

// PageBySlug returns the page with the given slug, or nil when it does not
// exist. Always fresh, like PostBySlug.
func (a *Adapter) PageBySlug(ctx context.Context, slug string) *Article {
	articles := a.Pages(ctx, PageOptions{Slug: slug, PerPage: 1, Fresh: true})
	if len(articles) == 0 {
		return nil
	}
	return &articles[0]
}

// Categories lists categories with WordPress's built-in "Uncategorized"
// bucket filtered out.
func (a *Adapter) Categories(ctx context.Context) []Category {
	terms, err := a.origin.Categories(ctx)
	if err != nil {
		a.logger.Error("failed to list categories", "error", err)
		return []Category{}
	}
	categories := make([]Category, 0, len(terms))
	for _, term := range terms {
		if term.ID == uncategorizedID {
			continue
		}
		categories = append(categories, Category{
			ID:          formatID(term.ID),
			Name:        term.Name,
			Slug:        term.Slug,
			Description: term.Description,
		})
	}
	return categories
}

// Tags lists all tags.
func (a *Adapter) Tags(ctx context.Context) []Tag {
	terms, err := a.origin.Tags(ctx)
	if err != nil {
		a.logger.Error("failed to list tags", "error", err)
		return []Tag{}
	}
	tags := make([]Tag, 0, len(terms))
	for _, term := range terms {
		tags = append(tags, Tag{
			ID:   formatID(term.ID),
			Name: term.Name,
			Slug: term.Slug,
		})
	}
	return tags
}

// fillViews records a view for a detail lookup and reports the running
// counter. Store failures leave the count at the 0 sentinel.
func (a *Adapter) fillViews(ctx context.Context, article *Article) {
	if a.views == nil {
		return
	}
	count, err := a.views.IncrementAndGet(ctx, article.ID)
	if err != nil {
		a.logger.Error("view counter unavailable", "content_id", article.ID, "error", err)
		return
	}
	article.Views = count
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (a *Adapter) countEnrichment(field, source string) {
	if a.metrics != nil {
		a.metrics.EnrichmentTotal.WithLabelValues(field, source).Inc()
	}
}
