package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const timelineHTML = `
<html><body>
  <article>
    <svg aria-label="Retweeted"></svg>
    <div lang="en">A repost that must be skipped</div>
    <a href="/someone/status/111">link</a>
  </article>
  <article>
    <div aria-label="Replying to @someone"></div>
    <div lang="en">A reply that must be skipped</div>
    <a href="/someone/status/222">link</a>
  </article>
  <article>
    <div lang="en">Post without a permalink</div>
  </article>
  <article>
    <div lang="en">First valid post</div>
    <a href="/quantumdaily/status/333">link</a>
    <img src="https://pbs.twimg.com/media/abc.jpg"/>
    <time datetime="2026-08-30T10:15:00.000Z"></time>
  </article>
  <article>
    <div lang="te">Second valid post</div>
    <a href="https://twitter.com/quantumdaily/status/444">link</a>
  </article>
</body></html>`

func timelineDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(timelineHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestExtractTimelineExclusions(t *testing.T) {
	t.Parallel()

	candidates := ExtractTimeline(timelineDoc(t), DefaultMaxPosts)

	// Repost and reply are excluded at extraction; the permalink-less
	// post survives until validation.
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	if candidates[0].Permalink != "" {
		t.Fatalf("expected empty permalink, got %s", candidates[0].Permalink)
	}
	if candidates[0].Text != "Post without a permalink" {
		t.Fatalf("unexpected text: %s", candidates[0].Text)
	}

	for _, c := range candidates {
		if strings.Contains(c.Text, "skipped") {
			t.Fatalf("excluded container leaked into candidates: %q", c.Text)
		}
	}
}

func TestExtractTimelineFields(t *testing.T) {
	t.Parallel()

	candidates := ExtractTimeline(timelineDoc(t), DefaultMaxPosts)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	first := candidates[1]
	if first.Permalink != "https://twitter.com/quantumdaily/status/333" {
		t.Fatalf("relative permalink not normalized: %s", first.Permalink)
	}
	if first.StatusID != "333" {
		t.Fatalf("unexpected status id: %s", first.StatusID)
	}
	if first.ImageURL != "https://pbs.twimg.com/media/abc.jpg" {
		t.Fatalf("unexpected image: %s", first.ImageURL)
	}
	want := time.Date(2026, time.August, 30, 10, 15, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published at: %v", first.PublishedAt)
	}

	second := candidates[2]
	if second.Permalink != "https://twitter.com/quantumdaily/status/444" {
		t.Fatalf("absolute permalink mangled: %s", second.Permalink)
	}
	if !second.PublishedAt.IsZero() {
		t.Fatalf("expected zero published at, got %v", second.PublishedAt)
	}
	if second.ImageURL != "" {
		t.Fatalf("expected no image, got %s", second.ImageURL)
	}
}

func TestExtractTimelineMax(t *testing.T) {
	t.Parallel()

	candidates := ExtractTimeline(timelineDoc(t), 2)
	if len(candidates) != 2 {
		t.Fatalf("expected max 2 candidates, got %d", len(candidates))
	}
}

func TestExtractSingle(t *testing.T) {
	t.Parallel()

	html := `
	<article>
	  <svg aria-label="Retweeted"></svg>
	  <div lang="en">Single post; exclusion rules do not apply here</div>
	  <a href="/acct/status/555">link</a>
	</article>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	c, ok := ExtractSingle(doc)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Permalink != "https://twitter.com/acct/status/555" {
		t.Fatalf("unexpected permalink: %s", c.Permalink)
	}
	if c.StatusID != "555" {
		t.Fatalf("unexpected status id: %s", c.StatusID)
	}
}

func TestExtractSingleEmptySnapshot(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>nothing rendered</p></body></html>`))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if _, ok := ExtractSingle(doc); ok {
		t.Fatal("expected no candidate from an empty snapshot")
	}
}
