package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"TweetScanner/internal/domain"
	"TweetScanner/internal/extractor"
	"TweetScanner/internal/ports"
)

const defaultPace = 200 * time.Millisecond

// IngestorDeps wires all driven adapters into the ingestion workflow.
type IngestorDeps struct {
	Provider   ports.SnapshotProvider
	Repository ports.ArticleRepository
	Enricher   ports.Enricher
	Logger     *slog.Logger
	MaxPosts   int
	Pace       time.Duration
}

// Ingestor runs the per-candidate state machine: validate, deduplicate,
// enrich, persist. One batch is strictly sequential in document order;
// concurrent batches rely on the store's unique constraint.
type Ingestor struct {
	provider   ports.SnapshotProvider
	repository ports.ArticleRepository
	enricher   ports.Enricher
	logger     *slog.Logger
	maxPosts   int
	pace       time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxPosts := deps.MaxPosts
	if maxPosts <= 0 {
		maxPosts = extractor.DefaultMaxPosts
	}

	pace := deps.Pace
	if pace <= 0 {
		pace = defaultPace
	}

	return &Ingestor{
		provider:   deps.Provider,
		repository: deps.Repository,
		enricher:   deps.Enricher,
		logger:     logger,
		maxPosts:   maxPosts,
		pace:       pace,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// IngestUser scrapes a user's timeline and ingests every extracted post.
// Only a failed snapshot aborts the batch.
func (i *Ingestor) IngestUser(ctx context.Context, username string, mode domain.EnrichMode) (domain.BatchReport, error) {
	report := domain.BatchReport{Source: username}

	doc, err := i.provider.UserTimeline(ctx, username)
	if err != nil {
		return report, fmt.Errorf("load timeline of %s: %w", username, err)
	}

	candidates := extractor.ExtractTimeline(doc, i.maxPosts)
	i.logger.Info("timeline extracted", "username", username, "candidates", len(candidates))

	return i.run(ctx, report, domain.OriginScrapeUser, mode, candidates), nil
}

// IngestSearch scrapes a search-results timeline for the query.
func (i *Ingestor) IngestSearch(ctx context.Context, query string, mode domain.EnrichMode) (domain.BatchReport, error) {
	report := domain.BatchReport{Source: query}

	doc, err := i.provider.SearchTimeline(ctx, query)
	if err != nil {
		return report, fmt.Errorf("load search results for %q: %w", query, err)
	}

	candidates := extractor.ExtractTimeline(doc, i.maxPosts)
	i.logger.Info("search extracted", "query", query, "candidates", len(candidates))

	return i.run(ctx, report, domain.OriginScrapeSearch, mode, candidates), nil
}

// IngestPost ingests a single post URL. The literal URL is checked
// against the store before any browser work: rendering a page is far
// more expensive than one point lookup.
func (i *Ingestor) IngestPost(ctx context.Context, postURL string, mode domain.EnrichMode) (domain.BatchReport, error) {
	report := domain.BatchReport{Source: postURL}

	exists, err := i.repository.Exists(ctx, postURL)
	if err != nil {
		report.Errors = append(report.Errors, domain.CandidateError{
			Permalink: postURL,
			Reason:    fmt.Sprintf("dedup lookup: %v", err),
		})
		return report, nil
	}
	if exists {
		report.Duplicates = append(report.Duplicates, postURL)
		return report, nil
	}

	doc, err := i.provider.Post(ctx, postURL)
	if err != nil {
		return report, fmt.Errorf("load post %s: %w", postURL, err)
	}

	candidate, ok := extractor.ExtractSingle(doc)
	if !ok {
		report.Errors = append(report.Errors, domain.CandidateError{
			Permalink: postURL,
			Reason:    "no post container in snapshot",
		})
		return report, nil
	}

	return i.run(ctx, report, domain.OriginScrapePost, mode, []domain.Candidate{candidate}), nil
}

// run processes candidates sequentially. Per-candidate failures are
// absorbed into the report; the batch always runs to the end.
func (i *Ingestor) run(ctx context.Context, report domain.BatchReport, origin domain.Origin, mode domain.EnrichMode, candidates []domain.Candidate) domain.BatchReport {
	for idx, candidate := range candidates {
		if !candidate.Valid() {
			report.Invalid = append(report.Invalid, invalidKey(candidate))
			continue
		}

		// Dedup before enrichment so known posts cost no external calls.
		exists, err := i.repository.Exists(ctx, candidate.Permalink)
		if err != nil {
			report.Errors = append(report.Errors, domain.CandidateError{
				Permalink: candidate.Permalink,
				Reason:    fmt.Sprintf("dedup lookup: %v", err),
			})
			i.pause(idx, len(candidates))
			continue
		}
		if exists {
			report.Duplicates = append(report.Duplicates, candidate.Permalink)
			i.pause(idx, len(candidates))
			continue
		}

		article := i.buildArticle(ctx, candidate, report.Source, origin, mode)

		err = i.repository.Insert(ctx, article)
		switch {
		case errors.Is(err, ports.ErrDuplicate):
			// Lost a race with a concurrent batch; the unique
			// constraint is the arbiter, not an error.
			report.Duplicates = append(report.Duplicates, candidate.Permalink)
		case err != nil:
			i.logger.Error("persist failed", "permalink", candidate.Permalink, "error", err)
			report.Errors = append(report.Errors, domain.CandidateError{
				Permalink: candidate.Permalink,
				Reason:    err.Error(),
			})
		default:
			report.Persisted = append(report.Persisted, candidate.Permalink)
		}

		i.pause(idx, len(candidates))
	}

	return report
}

// buildArticle assembles the durable record, with the deterministic
// truncation fallback when enrichment is unavailable.
func (i *Ingestor) buildArticle(ctx context.Context, candidate domain.Candidate, source string, origin domain.Origin, mode domain.EnrichMode) domain.Article {
	publishedAt := candidate.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = i.now()
	}

	article := domain.Article{
		Title:       truncateRunes(candidate.Text, 100),
		Summary:     truncateRunes(candidate.Text, 200),
		Body:        truncateRunes(candidate.Text, 200),
		Permalink:   candidate.Permalink,
		Source:      source,
		Origin:      origin,
		PublishedAt: publishedAt,
	}
	if candidate.ImageURL != "" {
		article.Media = []domain.Media{{Kind: domain.MediaImage, URL: candidate.ImageURL}}
	}

	if i.enricher == nil {
		return article
	}

	enrichment, err := i.enricher.Enrich(ctx, candidate.Text, mode)
	if err != nil {
		i.logger.Warn("enrichment unavailable, using raw text",
			"permalink", candidate.Permalink, "error", err)
		return article
	}

	switch mode {
	case domain.EnrichTeluguNews:
		article.LocalizedTitle = enrichment.Title
		article.LocalizedBody = enrichment.Body
	default:
		article.Title = enrichment.Title
		article.Summary = enrichment.Body
	}

	return article
}

// pause enforces the minimum interval between candidates that reached
// the network. Invalid candidates skip it; the last one has no successor.
func (i *Ingestor) pause(idx, total int) {
	if idx < total-1 {
		i.sleep(i.pace)
	}
}

// invalidKey keys an invalid candidate in the report: the permalink when
// it exists, else a snippet of the text.
func invalidKey(candidate domain.Candidate) string {
	if candidate.Permalink != "" {
		return candidate.Permalink
	}
	return truncateRunes(candidate.Text, 40)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
