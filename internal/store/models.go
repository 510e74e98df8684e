package store

import "time"

// Source is a configured RSS/paper feed definition the external scraper polls.
type Source struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	CustomPrompt string `json:"custom_prompt"`
}

// Article is a single scraped, summarized item. Articles are written by the
// external scraping backend; this service only reads and bulk-deletes them.
// RSSSource carries the originating source's name by value, not a foreign key.
type Article struct {
	ID          int       `json:"id"`
	ArticleURL  string    `json:"article_url"`
	RSSSource   string    `json:"rss_source"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Keywords    []string  `json:"keywords"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pagination describes the page window of an article listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ArticlePage is one page of filtered articles plus its pagination window.
type ArticlePage struct {
	Articles   []Article  `json:"articles"`
	Pagination Pagination `json:"pagination"`
}

// NameCount pairs a label with its article count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Metadata summarizes a content type: per-source article counts and the
// most frequent keywords.
type Metadata struct {
	Sources  []NameCount `json:"sources"`
	Keywords []NameCount `json:"keywords"`
}
