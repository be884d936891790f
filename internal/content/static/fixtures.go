package static

import "github.com/thenewsfeed/content-platform/internal/content"

var fixtureAuthors = map[string]content.Author{
	"sarah": {
		ID:        "2",
		Name:      "Sarah Chen",
		AvatarURL: "https://i.pravatar.cc/150?img=5",
		Bio:       "Technology correspondent covering AI and consumer hardware.",
	},
	"marcus": {
		ID:        "3",
		Name:      "Marcus Webb",
		AvatarURL: "https://i.pravatar.cc/150?img=12",
		Bio:       "Business desk. Markets, startups, the occasional merger.",
	},
	"editor": {
		ID:        "1",
		Name:      "TNF Editor",
		AvatarURL: "https://i.pravatar.cc/150?img=1",
	},
}

var fixtureArticles = []content.Article{
	{
		ID:          "1",
		Slug:        "ai-assistants-reshape-newsrooms",
		Title:       "AI Assistants Quietly Reshape How Newsrooms Work",
		Excerpt:     "From transcription to first-draft summaries, editorial teams are folding language models into daily production without replacing the reporters behind the bylines.",
		Content:     "<p>Across mid-size newsrooms, the tooling conversation has shifted from whether to adopt AI assistants to where to draw the line.</p><p>Editors describe a workflow where transcription, tagging, and headline variants are machine-suggested and human-approved.</p>",
		ImageURL:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800",
		Category:    "Technology",
		Author:      fixtureAuthors["sarah"],
		PublishedAt: "2025-06-03T09:15:00",
		ModifiedAt:  "2025-06-04T11:02:00",
		Views:       1842,
		Tags:        []string{"ai", "media"},
		Featured:    true,
	},
	{
		ID:          "2",
		Slug:        "regional-banks-quarterly-surprise",
		Title:       "Regional Banks Post a Quarterly Surprise",
		Excerpt:     "Deposit growth returned faster than analysts expected, led by institutions that spent the downturn rebuilding their retail arms.",
		Content:     "<p>Quarterly filings from a dozen regional lenders show deposits recovering two quarters ahead of consensus forecasts.</p>",
		ImageURL:    "https://images.unsplash.com/photo-1541354329998-f4d9a9f9297f?w=800",
		Category:    "Business",
		Author:      fixtureAuthors["marcus"],
		PublishedAt: "2025-06-02T14:30:00",
		Views:       956,
		Tags:        []string{"markets"},
	},
	{
		ID:          "3",
		Slug:        "city-transit-overhaul-explained",
		Title:       "The City Transit Overhaul, Explained",
		Excerpt:     "Read more...",
		Content:     "<p>The council's transit plan replaces four bus corridors with a single light-rail spine. Here is what changes, line by line.</p>",
		ImageURL:    "https://images.unsplash.com/photo-1544620347-c4fd4a3d5957?w=800",
		Category:    "News",
		Author:      fixtureAuthors["editor"],
		PublishedAt: "2025-05-28T08:00:00",
		Views:       410,
	},
}

var fixturePages = []content.Article{
	{
		ID:          "page-10",
		Slug:        "about",
		Title:       "About The News Feed",
		Excerpt:     "Who we are and how we report.",
		Content:     "<p>The News Feed is an independent digital magazine covering technology, business, and the city.</p>",
		ImageURL:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800",
		Category:    "Page",
		Author:      fixtureAuthors["editor"],
		PublishedAt: "2024-11-12T10:00:00",
	},
	{
		ID:          "page-11",
		Slug:        "contact",
		Title:       "Contact",
		Excerpt:     "Read more...",
		Content:     "<p>Tips, corrections, and partnership inquiries.</p>",
		ImageURL:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800",
		Category:    "Page",
		Author:      fixtureAuthors["editor"],
		PublishedAt: "2024-11-12T10:05:00",
	},
}

var fixtureCategories = []content.Category{
	{ID: "2", Name: "Technology", Slug: "technology", Description: "Hardware, software, and the people shipping both."},
	{ID: "3", Name: "Business", Slug: "business"},
	{ID: "4", Name: "News", Slug: "news"},
}

var fixtureTags = []content.Tag{
	{ID: "21", Name: "ai", Slug: "ai"},
	{ID: "22", Name: "media", Slug: "media"},
	{ID: "23", Name: "markets", Slug: "markets"},
}
