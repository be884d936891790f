package content

import (
	"context"
	"strconv"
	"sync"

	"github.com/thenewsfeed/content-platform/internal/wordpress"
)

// articleFromPost normalizes a WordPress post. Image, author, and category
// are resolved concurrently; none of the three may block another, and each
// falls back independently: embedded data first, then a dedicated fetch by
// ID, then the fixed default.
func (a *Adapter) articleFromPost(ctx context.Context, post wordpress.Post) Article {
	var (
		imageURL string
		author   Author
		category string
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		imageURL = a.resolveImage(ctx, post.FeaturedMedia, embeddedMedia(post.Embedded))
	}()
	go func() {
		defer wg.Done()
		author = a.resolveAuthor(ctx, post.Author, embeddedAuthors(post.Embedded))
	}()
	go func() {
		defer wg.Done()
		category = a.resolveCategory(ctx, post.Categories, embeddedTerms(post.Embedded))
	}()
	wg.Wait()

	excerpt := truncateRunes(stripHTML(post.Excerpt.Rendered), excerptMaxLen)
	if excerpt == "" {
		excerpt = excerptPlaceholder
	}
	title := stripHTML(post.Title.Rendered)

	return Article{
		ID:          strconv.FormatInt(post.ID, 10),
		Slug:        post.Slug,
		Title:       title,
		Excerpt:     excerpt,
		Content:     post.Content.Rendered,
		ImageURL:    imageURL,
		Category:    category,
		Author:      author,
		PublishedAt: post.Date,
		ModifiedAt:  post.Modified,
		Comments:    0,
		Tags:        tagNames(embeddedTerms(post.Embedded)),
		Featured:    post.Sticky,
		SEO:         seoFrom(post.Yoast, title, excerpt, imageURL, post.Link),
	}
}

// articleFromPage normalizes a WordPress page. Pages carry no taxonomy, no
// sticky flag, and no view counter.
func (a *Adapter) articleFromPage(ctx context.Context, page wordpress.Page) Article {
	var (
		imageURL string
		author   Author
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		imageURL = a.resolveImage(ctx, page.FeaturedMedia, embeddedMedia(page.Embedded))
	}()
	go func() {
		defer wg.Done()
		author = a.resolveAuthor(ctx, page.Author, embeddedAuthors(page.Embedded))
	}()
	wg.Wait()

	excerpt := truncateRunes(stripHTML(page.Excerpt.Rendered), excerptMaxLen)
	if excerpt == "" {
		excerpt = excerptPlaceholder
	}
	title := stripHTML(page.Title.Rendered)

	return Article{
		ID:          pageIDPrefix + strconv.FormatInt(page.ID, 10),
		Slug:        page.Slug,
		Title:       title,
		Excerpt:     excerpt,
		Content:     page.Content.Rendered,
		ImageURL:    imageURL,
		Category:    pageCategory,
		Author:      author,
		PublishedAt: page.Date,
		ModifiedAt:  page.Modified,
		SEO:         seoFrom(page.Yoast, title, excerpt, imageURL, page.Link),
	}
}

// resolveImage returns the featured image URL: embedded media, then a fetch
// by ID, then the default placeholder.
func (a *Adapter) resolveImage(ctx context.Context, mediaID int64, embedded []wordpress.Media) string {
	if len(embedded) > 0 && embedded[0].SourceURL != "" {
		a.countEnrichment("image", "embedded")
		return embedded[0].SourceURL
	}
	if mediaID > 0 {
		media, err := a.origin.Media(ctx, mediaID)
		if err == nil && media.SourceURL != "" {
			a.countEnrichment("image", "fetched")
			return media.SourceURL
		}
		if err != nil {
			a.logger.Error("failed to fetch media", "media_id", mediaID, "error", err)
		}
	}
	a.countEnrichment("image", "default")
	return defaultImageURL
}

// resolveAuthor returns the author record: embedded author, then a fetch by
// ID, then the default author.
func (a *Adapter) resolveAuthor(ctx context.Context, authorID int64, embedded []wordpress.User) Author {
	if len(embedded) > 0 {
		a.countEnrichment("author", "embedded")
		return authorFromUser(embedded[0])
	}
	if authorID > 0 {
		user, err := a.origin.User(ctx, authorID)
		if err == nil {
			a.countEnrichment("author", "fetched")
			return authorFromUser(*user)
		}
		a.logger.Error("failed to fetch author", "author_id", authorID, "error", err)
	}
	a.countEnrichment("author", "default")
	return defaultAuthor
}

// resolveCategory returns the display name of the first category: embedded
// terms, then a fetch by ID, then the fallback label.
func (a *Adapter) resolveCategory(ctx context.Context, categoryIDs []int64, terms [][]wordpress.Term) string {
	if len(categoryIDs) == 0 {
		a.countEnrichment("category", "default")
		return fallbackCategory
	}
	if len(terms) > 0 && len(terms[0]) > 0 {
		a.countEnrichment("category", "embedded")
		return terms[0][0].Name
	}
	term, err := a.origin.Category(ctx, categoryIDs[0])
	if err == nil && term.Name != "" {
		a.countEnrichment("category", "fetched")
		return term.Name
	}
	if err != nil {
		a.logger.Error("failed to fetch category", "category_id", categoryIDs[0], "error", err)
	}
	a.countEnrichment("category", "default")
	return fallbackCategory
}

// tagNames extracts tag names from the second wp:term slot. The first slot
// carries categories; posts without tags have no second slot.
func tagNames(terms [][]wordpress.Term) []string {
	if len(terms) < 2 || len(terms[1]) == 0 {
		return nil
	}
	names := make([]string, 0, len(terms[1]))
	for _, tag := range terms[1] {
		names = append(names, tag.Name)
	}
	return names
}

func authorFromUser(user wordpress.User) Author {
	avatar := user.AvatarURLs["96"]
	if avatar == "" {
		avatar = user.AvatarURLs["48"]
	}
	if avatar == "" {
		avatar = defaultAuthor.AvatarURL
	}
	return Author{
		ID:        strconv.FormatInt(user.ID, 10),
		Name:      user.Name,
		AvatarURL: avatar,
		Bio:       user.Description,
	}
}

// seoFrom builds SEO metadata from a Yoast head, falling back per field to
// the already-normalized content fields. Returns nil when the origin supplies
// no SEO head at all.
func seoFrom(yoast *wordpress.Yoast, title, excerpt, imageURL, link string) *SEO {
	if yoast == nil {
		return nil
	}
	seo := &SEO{
		Title:        yoast.Title,
		Description:  yoast.Description,
		CanonicalURL: yoast.Canonical,
	}
	if seo.Title == "" {
		seo.Title = title
	}
	if seo.Description == "" {
		seo.Description = excerpt
	}
	if len(yoast.OGImage) > 0 && yoast.OGImage[0].URL != "" {
		seo.OGImageURL = yoast.OGImage[0].URL
	} else {
		seo.OGImageURL = imageURL
	}
	if seo.CanonicalURL == "" {
		seo.CanonicalURL = link
	}
	return seo
}

func embeddedMedia(e *wordpress.Embedded) []wordpress.Media {
	if e == nil {
		return nil
	}
	return e.FeaturedMedia
}

func embeddedAuthors(e *wordpress.Embedded) []wordpress.User {
	if e == nil {
		return nil
	}
	return e.Author
}

func embeddedTerms(e *wordpress.Embedded) [][]wordpress.Term {
	if e == nil {
		return nil
	}
	return e.Terms
}
