// Package revalidate implements the gateway that converts CMS change
// notifications into cache invalidations. A notification arrives as a webhook
// (JSON body) or a manual call (query parameters); the gateway normalizes it,
// picks exactly one invalidation branch, purges the render cache, and answers
// with a diagnostic payload describing what was invalidated.
package revalidate

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// Listing paths refreshed for every post mutation and by the catch-all
// branch. The catch-all additionally covers the pages index.
var (
	listingPaths  = []string{"/", "/blog", "/latest", "/trending"}
	catchAllPaths = []string{"/", "/latest", "/trending", "/blog", "/page"}
)

// Kind is the invalidation branch a request resolves to.
type Kind string

const (
	KindPost        Kind = "post"
	KindPage        Kind = "page"
	KindPath        Kind = "path"
	KindTag         Kind = "tag"
	KindFullRefresh Kind = "full_refresh"
)

// Request is a normalized change notification. Exactly one branch applies,
// decided by Resolve.
type Request struct {
	Secret string
	Path   string
	Tag    string

	// Content descriptor, from a webhook payload.
	ID   int64
	Slug string
	Type string
}

type webhookBody struct {
	Secret string       `json:"secret"`
	Path   string       `json:"path"`
	Tag    string       `json:"tag"`
	ID     flexID       `json:"id"`
	Slug   string       `json:"slug"`
	Type   string       `json:"type"`
	Post   *contentDesc `json:"post"`
	Page   *contentDesc `json:"page"`
}

type contentDesc struct {
	ID   flexID `json:"id"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// flexID accepts a numeric id as either a JSON number or a quoted string;
// webhook senders are not consistent about which they emit. Unparseable
// values decode to 0 rather than failing the whole body.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n = json.Number(s)
	}
	id, err := n.Int64()
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(id)
	return nil
}

// ParseRequest normalizes an inbound notification. Body fields win over query
// parameters; a malformed body is treated as empty so the request falls
// through to query parameters or the catch-all branch. A nested post or page
// descriptor wins over the flat fields; a page descriptor implies type
// "page". The type defaults to "post".
func ParseRequest(r *http.Request) Request {
	var body webhookBody
	if r.Body != nil {
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				body = webhookBody{}
			}
		}
	}

	query := r.URL.Query()
	req := Request{
		Secret: firstNonEmpty(body.Secret, query.Get("secret")),
		Path:   firstNonEmpty(body.Path, query.Get("path")),
		Tag:    firstNonEmpty(body.Tag, query.Get("tag")),
		ID:     int64(body.ID),
		Slug:   body.Slug,
		Type:   body.Type,
	}
	if body.Post != nil {
		req.ID = int64(body.Post.ID)
		req.Slug = body.Post.Slug
		req.Type = firstNonEmpty(body.Post.Type, "post")
	} else if body.Page != nil {
		req.ID = int64(body.Page.ID)
		req.Slug = body.Page.Slug
		req.Type = firstNonEmpty(body.Page.Type, "page")
	}
	if req.Type == "" {
		req.Type = "post"
	}
	return req
}

// ParseGetRequest normalizes a manual GET trigger, which carries only query
// parameters and supports only the explicit-path and catch-all branches.
func ParseGetRequest(r *http.Request) Request {
	query := r.URL.Query()
	return Request{
		Secret: query.Get("secret"),
		Path:   query.Get("path"),
	}
}

// Resolve picks the invalidation branch. Precedence is fixed: post
// descriptor, page descriptor, explicit path, tag, catch-all. The first
// matching branch wins; later ones are unreachable once it does.
func (req Request) Resolve() Kind {
	switch {
	case req.ID != 0 && req.Type == "post":
		return KindPost
	case req.ID != 0 && req.Type == "page":
		return KindPage
	case req.Path != "":
		return KindPath
	case req.Tag != "":
		return KindTag
	default:
		return KindFullRefresh
	}
}

// PostPaths returns the paths invalidated for a post mutation: the slug-based
// detail path when a slug is known, the legacy id-based detail path, and the
// listing paths.
func (req Request) PostPaths() []string {
	paths := make([]string, 0, len(listingPaths)+2)
	if req.Slug != "" {
		paths = append(paths, "/blog/"+req.Slug)
	}
	paths = append(paths, "/article/"+strconv.FormatInt(req.ID, 10))
	paths = append(paths, listingPaths...)
	return paths
}

// PagePaths returns the paths invalidated for a page mutation: the page
// detail path when a slug is known, plus the home path.
func (req Request) PagePaths() []string {
	paths := make([]string, 0, 2)
	if req.Slug != "" {
		paths = append(paths, "/page/"+req.Slug)
	}
	return append(paths, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
