package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TweetScanner/internal/domain"
	"TweetScanner/internal/ports"
)

const (
	tableArticles = "articles"

	// Postgres class 23 integrity violation for duplicate keys.
	uniqueViolationCode = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"title", "summary", "body", "localized_title", "localized_body",
	"permalink", "source", "origin", "published_at", "media",
	"created_at", "updated_at",
}

// PostgresRepository persists articles in Postgres. The unique index on
// permalink is the cross-batch deduplication boundary.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the articles table and its unique permalink index.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		body TEXT NOT NULL,
		localized_title TEXT,
		localized_body TEXT,
		permalink TEXT NOT NULL,
		source TEXT NOT NULL,
		origin TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL,
		media JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_permalink ON articles(permalink);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate articles: %w", err)
	}
	return nil
}

// Exists runs a point lookup on the permalink.
func (r *PostgresRepository) Exists(ctx context.Context, permalink string) (bool, error) {
	query, args, err := psql.Select("1").
		From(tableArticles).
		Where(sq.Eq{"permalink": permalink}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// FindByPermalink loads a single article; (nil, nil) when absent.
func (r *PostgresRepository) FindByPermalink(ctx context.Context, permalink string) (*domain.Article, error) {
	query, args, err := psql.Select(articleColumns...).
		From(tableArticles).
		Where(sq.Eq{"permalink": permalink}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	var (
		art            domain.Article
		localizedTitle sql.NullString
		localizedBody  sql.NullString
		mediaJSON      []byte
	)

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&art.Title, &art.Summary, &art.Body, &localizedTitle, &localizedBody,
		&art.Permalink, &art.Source, &art.Origin, &art.PublishedAt, &mediaJSON,
		&art.CreatedAt, &art.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article: %w", err)
	}

	art.LocalizedTitle = localizedTitle.String
	art.LocalizedBody = localizedBody.String
	if len(mediaJSON) > 0 {
		if err := json.Unmarshal(mediaJSON, &art.Media); err != nil {
			return nil, fmt.Errorf("decode media: %w", err)
		}
	}

	return &art, nil
}

// Insert stores the article once. A unique-constraint hit surfaces as
// ports.ErrDuplicate so the caller can reclassify instead of failing.
func (r *PostgresRepository) Insert(ctx context.Context, art domain.Article) error {
	mediaJSON, err := json.Marshal(mediaOrEmpty(art.Media))
	if err != nil {
		return fmt.Errorf("encode media: %w", err)
	}

	query, args, err := psql.Insert(tableArticles).
		Columns("title", "summary", "body", "localized_title", "localized_body",
			"permalink", "source", "origin", "published_at", "media").
		Values(art.Title, art.Summary, art.Body,
			nullable(art.LocalizedTitle), nullable(art.LocalizedBody),
			art.Permalink, art.Source, string(art.Origin), art.PublishedAt, mediaJSON).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("insert article: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mediaOrEmpty(media []domain.Media) []domain.Media {
	if media == nil {
		return []domain.Media{}
	}
	return media
}
