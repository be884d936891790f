// Package content defines the normalized content model served to page
// rendering and the adapter that produces it from the WordPress origin.
//
// Every Article leaves the adapter with a resolved author and image URL:
// when the origin omits or fails to serve a sub-resource, a fixed default is
// substituted instead of leaving the field empty.
package content

import "context"

// Author is the resolved author of an Article.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio,omitempty"`
}

// SEO carries optional search/social metadata. Present only when the origin
// supplies an SEO head; each field falls back to a content field when absent.
type SEO struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	OGImageURL   string `json:"og_image_url,omitempty"`
	CanonicalURL string `json:"canonical_url,omitempty"`
}

// Article is the normalized content item for both posts and pages. Page IDs
// are namespaced with a "page-" prefix so they never collide with post IDs.
// Timestamps are carried verbatim from the origin.
type Article struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug,omitempty"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Author      Author   `json:"author"`
	PublishedAt string   `json:"published_at"`
	ModifiedAt  string   `json:"modified_at,omitempty"`
	Views       int64    `json:"views"`
	Comments    int      `json:"comments"`
	Tags        []string `json:"tags,omitempty"`
	Featured    bool     `json:"featured"`
	SEO         *SEO     `json:"seo,omitempty"`
}

// Category is a content category for navigation menus.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Tag is a content tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListOptions carries the filters supported by the post list operation.
// Fresh bypasses the origin cache (always-fresh reads for detail lookups).
type ListOptions struct {
	PerPage    int
	Page       int
	Categories []int64
	Tags       []int64
	Search     string
	Slug       string
	Fresh      bool
}

// Filtered reports whether the options narrow the listing beyond the default
// first page; filtered results are never shared through the render cache.
func (o ListOptions) Filtered() bool {
	return o.Search != "" || o.Slug != "" || len(o.Categories) > 0 || len(o.Tags) > 0 || o.Page > 1
}

// PageOptions carries the filters supported by the page list operation.
type PageOptions struct {
	PerPage int
	Page    int
	Slug    string
	Fresh   bool
}

// Source is a provider of normalized content. Two implementations exist: the
// WordPress-backed Adapter and the in-memory fixture source used for local
// development and tests.
//
// All operations are fail-soft: origin failures surface as empty lists or nil
// items with a logged diagnostic, never as an error to the caller.
type Source interface {
	Posts(ctx context.Context, opts ListOptions) []Article
	PostBySlug(ctx context.Context, slug string) *Article
	PostByID(ctx context.Context, id int64) *Article
	Pages(ctx context.Context, opts PageOptions) []Article
	PageBySlug(ctx context.Context, slug string) *Article
	Categories(ctx context.Context) []Category
	Tags(ctx context.Context) []Tag
}

const (
	// defaultImageURL substitutes for posts without a resolvable featured image.
	defaultImageURL = "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800"

	// fallbackCategory labels posts with no taxonomy terms.
	fallbackCategory = "News"

	// pageCategory labels all page-type content.
	pageCategory = "Page"

	// excerptPlaceholder substitutes for an empty excerpt.
	excerptPlaceholder = "Read more..."

	// excerptMaxLen is the excerpt truncation length in runes.
	excerptMaxLen = 200

	// uncategorizedID is WordPress's built-in default category, filtered from
	// category listings.
	uncategorizedID = 1

	// pageIDPrefix namespaces page IDs apart from post IDs.
	pageIDPrefix = "page-"
)

// defaultAuthor substitutes when the origin's author record cannot be resolved.
var defaultAuthor = Author{
	ID:        "1",
	Name:      "TNF Editor",
	AvatarURL: "https://i.pravatar.cc/150?img=1",
}
