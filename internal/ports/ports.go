package ports

import (
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TweetScanner/internal/domain"
)

// ErrDuplicate is returned by repositories when an insert hits the
// unique permalink constraint. The ingestor reclassifies it as a
// duplicate rather than a failure.
var ErrDuplicate = errors.New("article already exists")

// SnapshotProvider supplies rendered document snapshots. Scrolling and
// waiting for content happen inside the provider; consumers only see
// the finished document tree.
type SnapshotProvider interface {
	UserTimeline(ctx context.Context, username string) (*goquery.Document, error)
	SearchTimeline(ctx context.Context, query string) (*goquery.Document, error)
	Post(ctx context.Context, postURL string) (*goquery.Document, error)
}

// ArticleRepository persists articles for deduplication and history.
type ArticleRepository interface {
	Exists(ctx context.Context, permalink string) (bool, error)
	FindByPermalink(ctx context.Context, permalink string) (*domain.Article, error)
	// Insert stores the article once; ErrDuplicate when the permalink
	// is already taken.
	Insert(ctx context.Context, article domain.Article) error
}

// Enricher pushes raw post text to a text-generation backend. Any error
// means "no enrichment"; callers degrade to the truncation fallback.
type Enricher interface {
	Enrich(ctx context.Context, text string, mode domain.EnrichMode) (*domain.Enrichment, error)
}

// Scheduler controls when recurring ingestion jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
