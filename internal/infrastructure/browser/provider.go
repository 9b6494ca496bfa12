package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"TweetScanner/internal/config"
	"TweetScanner/internal/ports"
)

const (
	platformBaseURL = "https://twitter.com"

	// Post containers render late; everything waits on the first one.
	waitForPosts = `article`

	scrollWait = 1500 * time.Millisecond
)

// Cookie is one entry of the saved-session file. The file is produced by
// a manual login session and mounted as a secret.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
}

// Provider implements ports.SnapshotProvider with a headless browser.
// It performs all navigation, waiting and scrolling, and hands back a
// parsed document snapshot; consumers never drive the browser.
type Provider struct {
	headless   bool
	scrolls    int
	cookieFile string
	timeout    time.Duration
	logf       func(string, ...interface{})
}

var _ ports.SnapshotProvider = (*Provider)(nil)

// New builds a provider from configuration. logf receives browser-level
// errors; pass nil to discard them.
func New(cfg config.BrowserConfig, logf func(string, ...interface{})) *Provider {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Provider{
		headless:   cfg.Headless(),
		scrolls:    cfg.Scrolls,
		cookieFile: cfg.CookieFile,
		timeout:    cfg.Timeout(),
		logf:       logf,
	}
}

// UserTimeline renders a user's profile page and scrolls to load posts.
func (p *Provider) UserTimeline(ctx context.Context, username string) (*goquery.Document, error) {
	pageURL := fmt.Sprintf("%s/%s", platformBaseURL, url.PathEscape(username))
	return p.snapshot(ctx, pageURL, p.scrolls)
}

// SearchTimeline renders a search-results page for the query.
func (p *Provider) SearchTimeline(ctx context.Context, query string) (*goquery.Document, error) {
	pageURL := fmt.Sprintf("%s/search?q=%s&src=typed_query", platformBaseURL, url.QueryEscape(query))
	return p.snapshot(ctx, pageURL, p.scrolls)
}

// Post renders a single post page. No scrolling; the post is above the fold.
func (p *Provider) Post(ctx context.Context, postURL string) (*goquery.Document, error) {
	return p.snapshot(ctx, postURL, 0)
}

func (p *Provider) snapshot(ctx context.Context, pageURL string, scrolls int) (*goquery.Document, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(p.logf))
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, p.timeout)
	defer timeoutCancel()

	if err := p.injectCookies(browserCtx); err != nil {
		return nil, fmt.Errorf("inject cookies: %w", err)
	}

	tasks := chromedp.Tasks{
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(waitForPosts, chromedp.ByQuery),
	}
	for i := 0; i < scrolls; i++ {
		tasks = append(tasks,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			chromedp.Sleep(scrollWait),
		)
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot of %s: %w", pageURL, err)
	}

	return doc, nil
}

// injectCookies restores a saved login session before navigation. A
// missing cookie file is fine; the scrape then runs unauthenticated.
func (p *Provider) injectCookies(ctx context.Context) error {
	if p.cookieFile == "" {
		return nil
	}

	raw, err := os.ReadFile(p.cookieFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return fmt.Errorf("parse cookie file: %w", err)
	}

	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				err := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithSecure(c.Secure).
					WithHTTPOnly(c.HTTPOnly).
					Do(ctx)
				if err != nil {
					return err
				}
			}
			return nil
		}),
	)
}
