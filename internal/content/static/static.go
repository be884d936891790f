// Package static is the in-memory content source. It serves a small fixture
// dataset with the same shape and invariants as the WordPress-backed adapter,
// for local development without a CMS and for tests.
package static

import (
	"context"
	"strconv"
	"strings"

	"github.com/thenewsfeed/content-platform/internal/content"
)

// Source serves fixture content.
type Source struct {
	articles   []content.Article
	pages      []content.Article
	categories []content.Category
	tags       []content.Tag
}

var _ content.Source = (*Source)(nil)

// New creates a Source with the built-in fixture dataset.
func New() *Source {
	return &Source{
		articles:   fixtureArticles,
		pages:      fixturePages,
		categories: fixtureCategories,
		tags:       fixtureTags,
	}
}

// Posts returns fixture posts in dataset order, honoring pagination and the
// search and slug filters. Category and tag id filters are ignored: the
// fixture dataset carries no numeric taxonomy ids.
func (s *Source) Posts(_ context.Context, opts content.ListOptions) []content.Article {
	matched := make([]content.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if opts.Slug != "" && a.Slug != opts.Slug {
			continue
		}
		if opts.Search != "" && !matchesSearch(a, opts.Search) {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, opts.PerPage, opts.Page)
}

// PostBySlug returns the fixture post with the given slug, or nil.
func (s *Source) PostBySlug(_ context.Context, slug string) *content.Article {
	for _, a := range s.articles {
		if a.Slug == slug {
			article := a
			return &article
		}
	}
	return nil
}

// PostByID returns the fixture post with the given id, or nil.
func (s *Source) PostByID(ctx context.Context, id int64) *content.Article {
	for _, a := range s.articles {
		if a.ID == formatID(id) {
			article := a
			return &article
		}
	}
	return nil
}

// Pages returns fixture pages, honoring pagination and the slug filter.
func (s *Source) Pages(_ context.Context, opts content.PageOptions) []content.Article {
	matched := make([]content.Article, 0, len(s.pages))
	for _, p := range s.pages {
		if opts.Slug != "" && p.Slug != opts.Slug {
			continue
		}
		matched = append(matched, p)
	}
	return paginate(matched, opts.PerPage, opts.Page)
}

// PageBySlug returns the fixture page with the given slug, or nil.
func (s *Source) PageBySlug(_ context.Context, slug string) *content.Article {
	for _, p := range s.pages {
		if p.Slug == slug {
			page := p
			return &page
		}
	}
	return nil
}

// Categories returns the fixture categories.
func (s *Source) Categories(_ context.Context) []content.Category {
	return s.categories
}

// Tags returns the fixture tags.
func (s *Source) Tags(_ context.Context) []content.Tag {
	return s.tags
}

func matchesSearch(a content.Article, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Excerpt), q)
}

func paginate(items []content.Article, perPage, page int) []content.Article {
	if perPage < 1 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []content.Article{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
