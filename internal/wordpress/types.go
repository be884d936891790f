// Package wordpress provides a typed client for the WordPress REST API
// (wp/v2 namespace). Resource shapes mirror the origin's JSON, including the
// _embedded block produced by the _embed directive.
package wordpress

// Rendered wraps WordPress "rendered" text fields.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a WordPress post resource.
type Post struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Link          string    `json:"link"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Author        int64     `json:"author"`
	FeaturedMedia int64     `json:"featured_media"`
	Sticky        bool      `json:"sticky"`
	Categories    []int64   `json:"categories"`
	Tags          []int64   `json:"tags"`
	Yoast         *Yoast    `json:"yoast_head_json,omitempty"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// Page is a WordPress page resource. Pages carry no sticky flag and no
// taxonomy assignments.
type Page struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Link          string    `json:"link"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Author        int64     `json:"author"`
	FeaturedMedia int64     `json:"featured_media"`
	Parent        int64     `json:"parent"`
	MenuOrder     int       `json:"menu_order"`
	Yoast         *Yoast    `json:"yoast_head_json,omitempty"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// Embedded holds sub-resources inlined by the _embed directive. The wp:term
// slot is a list of term lists: index 0 carries categories, index 1 tags.
type Embedded struct {
	FeaturedMedia []Media  `json:"wp:featuredmedia,omitempty"`
	Terms         [][]Term `json:"wp:term,omitempty"`
	Author        []User   `json:"author,omitempty"`
}

// Media is a WordPress media attachment.
type Media struct {
	ID        int64    `json:"id"`
	SourceURL string   `json:"source_url"`
	AltText   string   `json:"alt_text"`
	Title     Rendered `json:"title"`
}

// User is a WordPress author record. AvatarURLs is keyed by pixel size
// ("24", "48", "96").
type User struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	AvatarURLs  map[string]string `json:"avatar_urls"`
	Description string            `json:"description"`
}

// Term is a taxonomy term (category or tag).
type Term struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Taxonomy    string `json:"taxonomy,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Yoast is the SEO metadata block emitted by the Yoast plugin.
type Yoast struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Canonical   string       `json:"canonical,omitempty"`
	OGImage     []YoastImage `json:"og_image,omitempty"`
}

// YoastImage is a single og:image entry.
type YoastImage struct {
	URL string `json:"url"`
}
