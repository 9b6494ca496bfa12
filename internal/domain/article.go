package domain

import "time"

// Origin identifies how an article entered the store.
type Origin string

const (
	OriginManual       Origin = "manual"
	OriginScrapeUser   Origin = "scrape-user"
	OriginScrapePost   Origin = "scrape-post"
	OriginScrapeSearch Origin = "scrape-search"
)

// MediaKind classifies a media attachment.
type MediaKind string

const (
	MediaImage         MediaKind = "image"
	MediaVideo         MediaKind = "video"
	MediaExternalVideo MediaKind = "external_video"
)

// Media is a single attachment carried by a persisted article.
type Media struct {
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url"`
}

// EnrichMode selects how the text-generation service rewrites a candidate.
type EnrichMode string

const (
	// EnrichSummarize asks for a title plus a short same-language summary.
	EnrichSummarize EnrichMode = "summarize"
	// EnrichTeluguNews asks for a Telugu title and a narrativized news body.
	EnrichTeluguNews EnrichMode = "telugu-news"
)

// Candidate is one scraped post that has not yet been checked against
// the store.
type Candidate struct {
	// StatusID is the numeric post ID when the permalink carried one.
	// Informational only; the permalink is the natural key.
	StatusID    string
	Text        string
	Permalink   string
	ImageURL    string
	PublishedAt time.Time
}

// Valid reports whether the candidate may be persisted. A missing
// permalink or empty text invalidates it.
func (c Candidate) Valid() bool {
	return c.Permalink != "" && c.Text != ""
}

// Enrichment is the optional AI-generated rewrite of a candidate's text.
type Enrichment struct {
	Title string
	Body  string
}

// Article is the durable record, keyed by permalink. Created once on
// first sight of a permalink, never mutated by the pipeline afterwards.
type Article struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Body           string    `json:"body"`
	LocalizedTitle string    `json:"localized_title,omitempty"`
	LocalizedBody  string    `json:"localized_body,omitempty"`
	Permalink      string    `json:"permalink"`
	Source         string    `json:"source"`
	Origin         Origin    `json:"origin"`
	PublishedAt    time.Time `json:"published_at"`
	Media          []Media   `json:"media,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}
