package revalidate

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func postRequest(t *testing.T, target, body string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
}

func TestParseRequestNestedDescriptorWins(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate",
		`{"id": 99, "slug": "flat", "post": {"id": 7, "slug": "nested", "type": "post"}}`)
	req := ParseRequest(r)
	if req.ID != 7 || req.Slug != "nested" {
		t.Errorf("nested descriptor must win, got id=%d slug=%q", req.ID, req.Slug)
	}
}

func TestParseRequestFlatDescriptor(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate", `{"id": 12, "slug": "hello"}`)
	req := ParseRequest(r)
	if req.ID != 12 || req.Slug != "hello" {
		t.Errorf("unexpected descriptor id=%d slug=%q", req.ID, req.Slug)
	}
	if req.Type != "post" {
		t.Errorf("type must default to post, got %q", req.Type)
	}
}

func TestParseRequestStringID(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate", `{"post": {"id": "34", "slug": "s"}}`)
	req := ParseRequest(r)
	if req.ID != 34 {
		t.Errorf("quoted numeric id must parse, got %d", req.ID)
	}
}

func TestParseRequestPageDescriptor(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate", `{"page": {"id": 5, "slug": "about"}}`)
	req := ParseRequest(r)
	if req.Type != "page" {
		t.Errorf("page descriptor implies type page, got %q", req.Type)
	}
	if req.Resolve() != KindPage {
		t.Errorf("expected page branch, got %s", req.Resolve())
	}
}

func TestParseRequestMalformedBodyFallsThrough(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate?path=/blog", `{"id": not-json`)
	req := ParseRequest(r)
	if req.ID != 0 {
		t.Errorf("malformed body must be treated as empty, got id=%d", req.ID)
	}
	if req.Path != "/blog" {
		t.Errorf("query parameters must survive a malformed body, got %q", req.Path)
	}
	if req.Resolve() != KindPath {
		t.Errorf("expected path branch, got %s", req.Resolve())
	}
}

func TestParseRequestEmptyBodyCatchAll(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate", ``)
	req := ParseRequest(r)
	if req.Resolve() != KindFullRefresh {
		t.Errorf("empty request must resolve to full refresh, got %s", req.Resolve())
	}
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Kind
	}{
		{"post wins over path and tag", Request{ID: 1, Type: "post", Path: "/x", Tag: "t"}, KindPost},
		{"page wins over path", Request{ID: 1, Type: "page", Path: "/x"}, KindPage},
		{"path wins over tag", Request{Path: "/x", Tag: "t"}, KindPath},
		{"tag alone", Request{Tag: "posts"}, KindTag},
		{"slug without id is not a descriptor", Request{Slug: "orphan", Type: "post"}, KindFullRefresh},
		{"unknown type falls through", Request{ID: 1, Type: "category", Path: "/x"}, KindPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPostPathsWithSlugAndID(t *testing.T) {
	req := Request{ID: 42, Slug: "big-news", Type: "post"}
	got := req.PostPaths()
	want := []string{"/blog/big-news", "/article/42", "/", "/blog", "/latest", "/trending"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PostPaths() = %v, want %v", got, want)
	}
}

func TestPostPathsWithoutSlug(t *testing.T) {
	req := Request{ID: 42, Type: "post"}
	got := req.PostPaths()
	if len(got) != 5 {
		t.Fatalf("expected 5 paths without slug, got %v", got)
	}
	if got[0] != "/article/42" {
		t.Errorf("expected id-based detail path first, got %v", got)
	}
}

func TestPagePaths(t *testing.T) {
	req := Request{ID: 5, Slug: "about", Type: "page"}
	got := req.PagePaths()
	want := []string{"/page/about", "/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PagePaths() = %v, want %v", got, want)
	}

	req.Slug = ""
	if got := req.PagePaths(); !reflect.DeepEqual(got, []string{"/"}) {
		t.Errorf("expected only home path without slug, got %v", got)
	}
}

func TestParseGetRequestIgnoresDescriptor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/revalidate?path=/latest&id=7&slug=x", nil)
	req := ParseGetRequest(r)
	if req.ID != 0 || req.Slug != "" {
		t.Errorf("GET form must not carry a descriptor, got %+v", req)
	}
	if req.Path != "/latest" {
		t.Errorf("expected path /latest, got %q", req.Path)
	}
}

func TestParseRequestBodyWinsOverQuery(t *testing.T) {
	r := postRequest(t, "/api/v1/revalidate?path=/from-query", `{"path": "/from-body"}`)
	req := ParseRequest(r)
	if req.Path != "/from-body" {
		t.Errorf("body must win over query, got %q", req.Path)
	}
}
