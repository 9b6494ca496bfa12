package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TweetScanner/internal/domain"
)

const (
	baseURL = "https://twitter.com"

	// DefaultMaxPosts bounds a single timeline extraction.
	DefaultMaxPosts = 20
)

var statusExpr = regexp.MustCompile(`/status/(\d+)`)

// Post container selectors. The platform changes its DOM frequently;
// keep them together so breakage is a one-file fix.
const (
	postContainer   = `article`
	repostIndicator = `svg[aria-label="Retweeted"]`
	replyBanner     = `div[aria-label*="Replying to"]`
	postText        = `div[lang]`
	permalinkAnchor = `a[href*="/status/"]`
	postImage       = `img[src*="twimg"]`
	postTime        = `time`
)

// ExtractTimeline walks post containers in document order and returns up
// to max candidates. Reposts and reply-context posts are excluded
// entirely. A post without a permalink is still extracted; the ingestor
// reports it as invalid.
func ExtractTimeline(doc *goquery.Document, max int) []domain.Candidate {
	if max <= 0 {
		max = DefaultMaxPosts
	}

	var candidates []domain.Candidate
	doc.Find(postContainer).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		if container.Find(repostIndicator).Length() > 0 {
			return true
		}
		if container.Find(replyBanner).Length() > 0 {
			return true
		}

		candidates = append(candidates, parseContainer(container))
		return len(candidates) < max
	})

	return candidates
}

// ExtractSingle extracts the first post container of a single-post
// snapshot. No exclusion rules apply. The second return is false when
// the snapshot holds no container at all.
func ExtractSingle(doc *goquery.Document) (domain.Candidate, bool) {
	container := doc.Find(postContainer).First()
	if container.Length() == 0 {
		return domain.Candidate{}, false
	}
	return parseContainer(container), true
}

func parseContainer(container *goquery.Selection) domain.Candidate {
	var c domain.Candidate

	c.Text = strings.TrimSpace(container.Find(postText).First().Text())

	if href, ok := container.Find(permalinkAnchor).First().Attr("href"); ok {
		c.Permalink = absoluteURL(href)
		if m := statusExpr.FindStringSubmatch(c.Permalink); m != nil {
			c.StatusID = m[1]
		}
	}

	if src, ok := container.Find(postImage).First().Attr("src"); ok {
		c.ImageURL = src
	}

	if raw, ok := container.Find(postTime).First().Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			c.PublishedAt = parsed
		}
	}

	return c
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
